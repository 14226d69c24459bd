package check

import (
	"slices"
	"strconv"

	"github.com/shapecheck/shapecheck/internal/log"
	"github.com/shapecheck/shapecheck/shape"
)

var syncLogger = log.DefaultLogger.With("section", "sync")

// SyncReport lists the drift between a record's key set and the key
// set of the companion declared to track it. Both directions are
// always computed; an empty report means the two are synchronized.
type SyncReport struct {
	MissingInCompanion []string
	ExtraInCompanion   []string
}

func (r SyncReport) Synchronized() bool {
	return len(r.MissingInCompanion) == 0 && len(r.ExtraInCompanion) == 0
}

// CheckSync compares the key sets of source and companion. Drift is
// only ever reported, never corrected: a field silently absent from a
// per-key control mapping is exactly the defect this check exists to
// surface.
func CheckSync(source shape.Object, companion shape.Mapped) SyncReport {
	srcKeys := source.KeySet()
	compKeys := companion.KeySet()

	missing := srcKeys.Difference(compKeys).Slice()
	extra := compKeys.Difference(srcKeys).Slice()
	slices.Sort(missing)
	slices.Sort(extra)

	if len(missing) > 0 || len(extra) > 0 {
		syncLogger.Debug("sync: drift found", "missing", missing, "extra", extra)
	}
	return SyncReport{MissingInCompanion: missing, ExtraInCompanion: extra}
}

// Derive bootstraps a companion for source: one entry per field, each
// carrying the boolean literal defaultFlag, for a human to then fill
// in the real per-key values.
func Derive(source shape.Object, defaultFlag bool) shape.Mapped {
	values := make(map[string]shape.Type, len(source.Fields))
	for _, f := range source.Fields {
		values[f.Name] = shape.Literal{Kind: "boolean", Text: strconv.FormatBool(defaultFlag)}
	}
	return shape.NewMapped(values, nil)
}
