package models

import "strconv"

// TrackedObject is a raw record fetched from the metadata store: a pipeline
// history entry, a delivery config, or a service account.
type TrackedObject map[string]any

// LastModified returns the record's last-modified timestamp in epoch
// milliseconds. Storage-record versions disagree on the field name, so
// updateTs takes precedence over lastModified when both are present.
func (o TrackedObject) LastModified() (int64, bool) {
	v, ok := o["updateTs"]
	if !ok {
		v, ok = o["lastModified"]
	}
	if !ok {
		return 0, false
	}
	return toEpochMillis(v)
}

func toEpochMillis(v any) (int64, bool) {
	switch ts := v.(type) {
	case int64:
		return ts, true
	case int:
		return int64(ts), true
	case float64:
		return int64(ts), true
	case string:
		parsed, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
