// Package file loads bill records from local JSON, JSON Lines or CSV files.
//
// Every format uses the same field names: bill_id, title, raw_text,
// sponsor_party, state, enacted_date, vote_yea, vote_nay and sponsors.
// A key that is absent stays nil on the domain.BillRecord so validation can
// tell a missing raw_text from an empty one. In CSV files sponsors are
// separated by semicolons and empty date or vote cells count as missing.
package file
