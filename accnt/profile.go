package accnt

import (
	"fmt"

	"github.com/google/pprof/profile"
)

/// ProcessStat_t pairs a process id with its accounting snapshot, the
/// unit DumpProfile works over.
type ProcessStat_t struct {
	ID    uint32
	Stats Snapshot_t
}

/// DumpProfile builds a pprof profile.Profile with one sample per
/// process, carrying its user/system nanosecond counters as sample
/// values. It backs the D_PROF device (defs.D_PROF): a pprof-format
/// dump a developer can open with `go tool pprof` instead of the
/// teacher's hand-rolled rusage byte layout.
func DumpProfile(stats []ProcessStat_t, nowNanos int64) *profile.Profile {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "user", Unit: "nanoseconds"},
			{Type: "sys", Unit: "nanoseconds"},
		},
		TimeNanos: nowNanos,
	}
	for i, st := range stats {
		id := uint64(i + 1)
		fn := &profile.Function{ID: id, Name: fmt.Sprintf("proc[%d]", st.ID)}
		loc := &profile.Location{ID: id, Line: []profile.Line{{Function: fn}}}
		p.Function = append(p.Function, fn)
		p.Location = append(p.Location, loc)
		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{st.Stats.Userns, st.Stats.Sysns},
		})
	}
	return p
}
