package core

import "sync/atomic"

// DefaultScanWindow is the conventional summary window size.
const DefaultScanWindow = 5

// ScanHistorySnapshot holds the most recently fetched scan-history list.
// The list is replaced wholesale on every refresh or successful
// add-to-log action; there is no incremental merge. Readers always
// observe either the old or the new list in full, never a mix.
type ScanHistorySnapshot struct {
	entries atomic.Pointer[[]ScanHistoryEntry]
}

// Replace atomically installs a new snapshot, discarding the old one.
// The entries are copied, so the caller keeps ownership of its slice.
func (s *ScanHistorySnapshot) Replace(entries []ScanHistoryEntry) {
	copied := make([]ScanHistoryEntry, len(entries))
	copy(copied, entries)
	s.entries.Store(&copied)
}

// Current returns the latest fetched list in delivery order.
// No re-sorting is performed; the fetch layer's order is authoritative.
func (s *ScanHistorySnapshot) Current() []ScanHistoryEntry {
	p := s.entries.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Window returns the first n entries of the current snapshot for summary
// presentation, fewer if the snapshot is shorter.
func (s *ScanHistorySnapshot) Window(n int) []ScanHistoryEntry {
	current := s.Current()
	if n <= 0 {
		return nil
	}
	if n > len(current) {
		n = len(current)
	}
	return current[:n]
}
