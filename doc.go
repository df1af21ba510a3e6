// Package fiox converts structured data files between JSON, TOML, CSV and NDJSON,
// and validates that a file in one of those formats is well formed.
//
// The root package holds the common record model shared by every format:
//
//   - Value: a recursive tagged value covering the JSON and TOML type systems
//   - Record: the sealed sum of JSONRecord, TOMLRecord and CSVRecord
//   - Stream: the sealed sum of ValueStream, TableStream and NDJSONStream
//   - Error: the error model (code, location, hint, context chain)
//
// Design policy:
//   - Keep the model in the root package; decoders live under decode/, encoders under
//     encode/, validators under validate/, cross-format lowering rules under codec/.
//   - Streams are pull based and single pass. Encoders drive the pipeline by calling
//     RecordIter.Next until io.EOF.
//   - The CLI lives under cmd/fiox and the dispatch table under pipeline/.
//
// Typical usage:
//
//	sum, err := pipeline.Convert(ctx, "in.csv", "out.ndjson", pipeline.Options{ParseNumbers: true})
//	err = pipeline.Validate(ctx, "in.toml", pipeline.Options{Verbose: true})
package fiox
