package lifedb

import "fmt"

type StoreStats struct {
	Kind    string
	Records int

	Reads   uint64
	Creates uint64
	Updates uint64
	Deletes uint64
	Resets  uint64
}

func (st StoreStats) Writes() uint64 {
	return st.Creates + st.Updates + st.Deletes
}

func (st StoreStats) String() string {
	return fmt.Sprintf("%s: records = %d, reads = %d, creates = %d, updates = %d, deletes = %d, resets = %d", st.Kind, st.Records, st.Reads, st.Creates, st.Updates, st.Deletes, st.Resets)
}

func (s *Store[R]) Stats() StoreStats {
	return StoreStats{
		Kind:    s.kind,
		Records: s.Len(),
		Reads:   s.ReadCount.Load(),
		Creates: s.CreateCount.Load(),
		Updates: s.UpdateCount.Load(),
		Deletes: s.DeleteCount.Load(),
		Resets:  s.ResetCount.Load(),
	}
}
