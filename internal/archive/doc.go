// Package archive downloads monthly MMS archives and decodes them into
// record sets.
//
// Each archive is a zip holding one CSV file in the MMS data-model layout:
//
//	C,...                          report header (discarded)
//	I,DISPATCH,PRICE,1,SETTLEMENTDATE,...   column header
//	D,DISPATCH,PRICE,1,"2020/01/01 00:05:00",...
//	C,"END OF REPORT",...          footer (discarded)
//
// Cells are typed through the schema catalog: REAL columns are parsed as
// numbers, everything else stays text, and empty cells become Null.
//
// Any failure to obtain a usable archive is reported as SOURCE_UNAVAILABLE.
// Transient HTTP failures are retried with exponential backoff before that.
package archive
