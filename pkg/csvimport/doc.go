// Package csvimport turns appointment exports from arbitrary scheduling
// tools into normalized appointment records.
//
// The pipeline is a set of pure functions. None of them returns an error for
// bad data: malformed quoting, unknown columns and unparsable values degrade
// to omitted fields or unchanged raw strings.
//
// # Pipeline
//
//	rows := csvimport.ParseRows(content)
//	mapping := csvimport.DetectFieldMappings(rows[0])
//	appts := csvimport.ConvertRows(rows[1:], mapping)
//	preview := csvimport.GeneratePreview(appts, csvimport.DefaultPreviewLimit)
//
// [Import] runs the same steps and additionally reports unmapped headers and
// the number of data rows dropped during conversion.
//
// # Column detection
//
// Headers are normalized (lowercase, anything outside [a-z0-9] becomes "_")
// and matched by substring against a fixed synonym table. Fields are
// evaluated in canonical order and the last matching field claims a column.
// When two columns claim the same field, the later column wins.
//
// # Value normalization
//
//   - date: parsed directly, then as MM/DD/YYYY, YYYY-MM-DD or MM-DD-YYYY
//     (month first). Unrecognized values are kept as-is.
//   - time: reduced to HH:MM with a "pm" adjustment for hours below 12.
//     "12am" is not converted to 00.
//   - duration: leading integer; omitted when none.
//   - price: digits and dots only, leading decimal; omitted when none.
//
// # Uploads
//
// [DecodeUpload] converts UTF-8 or BOM-marked UTF-16 bytes into a string and
// [ParseWorkbook] reads the first sheet of an XLSX file into rows, so both
// formats share one pipeline.
package csvimport
