// Package rate keeps Redis fixed-window counters for failed password logins.
//
// Counters use INCR with an EXPIRE set on the first hit of a window. Keys:
//   - al:<email>  failed logins per account
//   - ali:<ip>    failed logins per client address
package rate
