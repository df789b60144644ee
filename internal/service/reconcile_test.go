package service

import (
	"testing"

	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/internal/model"
)

func members(ids ...int) []model.MemberRecord {
	out := make([]model.MemberRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.MemberRecord{MemberID: id, LastName: "M", BoatLength: 8, BoatWidth: 2.6})
	}
	return out
}

func requestedByMember(boats []model.ReconciledBoat) map[int]bool {
	out := make(map[int]bool, len(boats))
	for _, b := range boats {
		out[b.Member] = b.Requested
	}
	return out
}

func TestReconcile_Scenario(t *testing.T) {
	logger, logs := observedLogger()
	res := Reconcile(ReconcileInput{
		Requests:  []int{100, 101},
		Scheduled: []int{102},
		NoSpot:    []int{101},
		Members:   members(100, 101, 102),
	}, logger)

	got := requestedByMember(res.Boats)
	want := map[int]bool{100: true, 101: false, 102: true}
	if len(got) != len(want) {
		t.Fatalf("boats = %v, want %v", got, want)
	}
	for id, req := range want {
		if got[id] != req {
			t.Errorf("member %d requested = %v, want %v", id, got[id], req)
		}
	}

	warned := logs.FilterMessage("member not in requests, but booked for dry dock").All()
	if len(warned) != 1 || warned[0].ContextMap()["member"] != int64(102) {
		t.Errorf("expected one warning for member 102, got %v", warned)
	}
	if len(res.Added) != 1 || res.Added[0] != 102 {
		t.Errorf("Added = %v, want [102]", res.Added)
	}
}

func TestReconcile_CountMatchesKnownUnion(t *testing.T) {
	res := Reconcile(ReconcileInput{
		Requests:  []int{1, 2, 3},
		OnLand:    []int{3, 4},
		Scheduled: []int{5, 99},
		Members:   members(1, 2, 4, 5, 6),
	}, zap.NewNop())

	// union {1,2,3,4,5,99} ∩ known {1,2,4,5,6} = {1,2,4,5}
	if len(res.Boats) != 4 {
		t.Errorf("boats = %d, want 4", len(res.Boats))
	}
	if len(res.Unknown) != 2 {
		t.Errorf("Unknown = %v, want [3 99]", res.Unknown)
	}
}

func TestReconcile_NoSpotAlwaysDeclines(t *testing.T) {
	res := Reconcile(ReconcileInput{
		Requests:  []int{1},
		OnLand:    []int{2},
		Scheduled: []int{3},
		NoSpot:    []int{1, 2, 3},
		Members:   members(1, 2, 3),
	}, zap.NewNop())
	for _, b := range res.Boats {
		if b.Requested {
			t.Errorf("member %d in no-spot set is requested", b.Member)
		}
	}
}

func TestReconcile_DimensionsAndLastWriteWins(t *testing.T) {
	recs := []model.MemberRecord{
		{MemberID: 7, LastName: "Old", BoatLength: 6, BoatWidth: 2},
		{MemberID: 7, LastName: "Berg", BoatLength: 9.3, BoatWidth: 2.8},
	}
	res := Reconcile(ReconcileInput{Requests: []int{7}, Members: recs}, zap.NewNop())

	if len(res.Boats) != 1 || res.Matched != 2 {
		t.Fatalf("boats = %d matched = %d, want 1 and 2", len(res.Boats), res.Matched)
	}
	b := res.Boats[0]
	if b.Name != "Berg" {
		t.Errorf("Name = %q, want last row", b.Name)
	}
	if b.Length != 10.3 {
		t.Errorf("Length = %v, want 10.3", b.Length)
	}
	if b.Width != 4.0 {
		t.Errorf("Width = %v, want 4.0 (3.8 rounded up to half)", b.Width)
	}
}

func TestRoundUpHalf(t *testing.T) {
	for in, want := range map[float64]float64{3.0: 3.0, 3.1: 3.5, 3.5: 3.5, 3.6: 4.0} {
		if got := roundUpHalf(in); got != want {
			t.Errorf("roundUpHalf(%v) = %v, want %v", in, got, want)
		}
	}
}
