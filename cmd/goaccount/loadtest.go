package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	mathrand "math/rand/v2"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/MrEthical07/goAccount/jwt"
	"github.com/MrEthical07/goAccount/session"
	"github.com/MrEthical07/goAccount/user"
)

type loadtestOptions struct {
	sessions    int
	concurrency int
	ops         int
	redisAddr   string
}

var loadOpts loadtestOptions

var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Measure authenticate and reissue throughput",
	Long: `Seeds sessions directly into Redis, then runs an authenticate phase
(signature checks only) and a reissue phase (GET plus rotation) against them.

Without --redis-addr or REDIS_ADDR an embedded miniredis is used.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runLoadtest(cmd.Context(), cmd.OutOrStdout(), loadOpts)
	},
}

func init() {
	rootCmd.AddCommand(loadtestCmd)
	f := loadtestCmd.Flags()
	f.IntVar(&loadOpts.sessions, "sessions", 10000, "number of sessions to seed")
	f.IntVar(&loadOpts.concurrency, "concurrency", 64, "number of concurrent workers")
	f.IntVar(&loadOpts.ops, "ops", 50000, "operations per phase")
	f.StringVar(&loadOpts.redisAddr, "redis-addr", "", "redis address; if empty, REDIS_ADDR or miniredis is used")
}

// credential is one seeded session. Reissue replaces both tokens, so
// workers hold mu while a rotation is in flight.
type credential struct {
	mu      sync.Mutex
	access  string
	renewal string
}

func runLoadtest(ctx context.Context, out io.Writer, opts loadtestOptions) error {
	if opts.sessions <= 0 || opts.concurrency <= 0 || opts.ops <= 0 {
		return fmt.Errorf("sessions, concurrency and ops must be > 0")
	}

	addr := opts.redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start miniredis: %w", err)
		}
		defer mr.Close()
		addr = mr.Addr()
		fmt.Fprintf(out, "using miniredis at %s\n", addr)
	} else {
		fmt.Fprintf(out, "using redis at %s\n", addr)
	}
	client := redis.NewClient(&redis.Options{Addr: addr, PoolSize: opts.concurrency})
	defer client.Close()

	key := make([]byte, 64)
	if _, err := rand.Read(key); err != nil {
		return err
	}
	engineCfg := goAccount.DefaultConfig()
	engineCfg.JWT.Secret = base64.StdEncoding.EncodeToString(key)
	engineCfg.Metrics.Enabled = false

	engine, err := goAccount.New().
		WithConfig(engineCfg).
		WithRedis(client).
		WithDirectory(user.NewMemory(time.Now)).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	creds, err := seedSessions(ctx, client, engineCfg, opts.sessions)
	if err != nil {
		return err
	}

	authStats := runPhase(opts, func(r *mathrand.Rand) error {
		c := creds[r.IntN(len(creds))]
		c.mu.Lock()
		access := c.access
		c.mu.Unlock()
		_, err := engine.Authenticate(ctx, access)
		return err
	})
	reissueStats := runPhase(opts, func(r *mathrand.Rand) error {
		c := creds[r.IntN(len(creds))]
		c.mu.Lock()
		defer c.mu.Unlock()
		res, err := engine.Reissue(ctx, "Bearer "+c.access, c.renewal)
		if err != nil {
			return err
		}
		c.access, c.renewal = res.AccessToken, res.RenewalToken
		return nil
	})

	fmt.Fprintln(out, "---- results ----")
	printStats(out, "authenticate", authStats)
	printStats(out, "reissue", reissueStats)
	return nil
}

// seedSessions writes sessions the same way login does, without paying for
// password hashing.
func seedSessions(ctx context.Context, client redis.UniversalClient, cfg goAccount.Config, n int) ([]*credential, error) {
	manager, err := jwt.NewManager(jwt.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		RenewalTTL: cfg.JWT.RenewalTTL,
	})
	if err != nil {
		return nil, err
	}
	store := session.NewStore(client, session.Config{
		Prefix:       cfg.Session.RedisPrefix,
		TombstoneTTL: cfg.Session.TombstoneTTL,
	})

	creds := make([]*credential, n)
	for i := range n {
		email := fmt.Sprintf("load-%d@example.com", i)
		pair, err := manager.Issue(jwt.Identity{ID: int64(i + 1), Email: email})
		if err != nil {
			return nil, err
		}
		if err := store.Put(ctx, pair.RenewalToken, email, manager.RenewalTTL()); err != nil {
			return nil, fmt.Errorf("seed session: %w", err)
		}
		creds[i] = &credential{access: pair.AccessToken, renewal: pair.RenewalToken}
	}
	return creds, nil
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func runPhase(opts loadtestOptions, op func(r *mathrand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, opts.ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := range opts.concurrency {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := mathrand.New(mathrand.NewPCG(uint64(time.Now().UnixNano()), uint64(worker)*7919))
			for {
				if int(atomic.AddInt64(&cursor, 1)) > opts.ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(out io.Writer, name string, s phaseStats) {
	fmt.Fprintf(out, "%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
