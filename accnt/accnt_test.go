package accnt

import (
	"sync"
	"testing"
)

func TestAccntAddMerges(t *testing.T) {
	var a, b Accnt_t
	a.Utadd(100)
	a.Systadd(50)
	b.Utadd(10)
	b.Systadd(5)
	a.Add(&b)
	snap := a.Snapshot()
	if snap.Userns != 110 || snap.Sysns != 55 {
		t.Fatalf("Snapshot() = %+v, want {110, 55}", snap)
	}
}

func TestAccntConcurrentAdd(t *testing.T) {
	var a Accnt_t
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Utadd(1)
			a.Systadd(2)
		}()
	}
	wg.Wait()
	snap := a.Snapshot()
	if snap.Userns != 100 || snap.Sysns != 200 {
		t.Fatalf("Snapshot() = %+v, want {100, 200}", snap)
	}
}

func TestDumpProfileOneSamplePerProcess(t *testing.T) {
	stats := []ProcessStat_t{
		{ID: 1, Stats: Snapshot_t{Userns: 10, Sysns: 20}},
		{ID: 2, Stats: Snapshot_t{Userns: 30, Sysns: 40}},
	}
	p := DumpProfile(stats, 12345)
	if len(p.Sample) != 2 {
		t.Fatalf("len(Sample) = %d, want 2", len(p.Sample))
	}
	if p.Sample[0].Value[0] != 10 || p.Sample[0].Value[1] != 20 {
		t.Fatalf("Sample[0].Value = %v, want [10, 20]", p.Sample[0].Value)
	}
	if p.TimeNanos != 12345 {
		t.Fatalf("TimeNanos = %d, want 12345", p.TimeNanos)
	}
}
