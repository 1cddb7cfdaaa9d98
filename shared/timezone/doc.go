// Package timezone pins wall-clock time to the hotel's timezone, configured
// through APP_TIMEZONE as an IANA name such as "Asia/Jakarta". An unknown or
// empty name falls back to UTC.
//
// Stay dates (check-in, check-out) are calendar days, not instants. They are
// kept as UTC midnight values, which is also how PostgreSQL DATE columns scan.
// Today returns the hotel's current calendar day in that form so it can be
// compared with stay dates directly:
//
//	arrivingSoon := !group.CheckIn.Before(timezone.Today())
//
// Audit timestamps go through Now and Format.
package timezone
