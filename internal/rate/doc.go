// Package rate implements the fixed-window Redis attempt limiter guarding
// password logins and verification-code checks. Throttling is optional and
// disabled unless configured.
package rate
