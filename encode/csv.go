package encode

import (
	"encoding/csv"
	"io"

	fiox "github.com/reoring/fiox"
)

// CSV writes a table stream: the header row, then every record. A record whose
// arity disagrees with the headers is replaced by an empty row and a warning;
// it does not stop the conversion.
func CSV(w io.Writer, s fiox.Stream, opts Options) error {
	if err := CheckShape(fiox.FormatCSV, s); err != nil {
		return err
	}
	t := s.(*fiox.TableStream)
	log := fiox.LoggerOr(opts.Logger)

	out := newOutput(w)
	cw := csv.NewWriter(out.bw)
	if err := cw.Write(t.Headers); err != nil {
		return writeError(err)
	}
	empty := make([]string, len(t.Headers))
	row := 0
	err := each(t.Iter, func(rec fiox.Record) error {
		row++
		fields := []string(fiox.FieldsOf(rec))
		if len(fields) != len(t.Headers) {
			log.Warnf("record %d has %d fields but there are %d headers; writing an empty row", row, len(fields), len(t.Headers))
			fields = empty
		}
		if err := cw.Write(fields); err != nil {
			return writeError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return writeError(err)
	}
	return out.flush()
}
