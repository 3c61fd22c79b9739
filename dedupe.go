package etl

// Deduplicate returns a new batch with duplicate ids removed, keeping
// the first record of each id in original input order, along with the
// number of records dropped. Records with a null id are never treated
// as duplicates of each other.
//
// This is distinct from the validator's Duplicate finding: the
// validator only reports, Deduplicate actually removes.
func Deduplicate(batch *RecordBatch) (*RecordBatch, int) {
	out := &RecordBatch{
		Records: make([]Record, 0, batch.Len()),
		Columns: append([]string(nil), batch.Columns...),
	}

	seen := make(map[string]bool, batch.Len())
	removed := 0
	for i := range batch.Records {
		rec := batch.Records[i]
		if rec.ID.Valid {
			if seen[rec.ID.V] {
				removed++
				continue
			}
			seen[rec.ID.V] = true
		}
		out.Records = append(out.Records, rec)
	}

	return out, removed
}
