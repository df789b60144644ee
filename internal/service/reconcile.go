package service

import (
	"math"

	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/internal/model"
)

// BoatMargin is added to both boat dimensions to leave handling space.
const BoatMargin = 1.0

// ReconcileInput holds the member sets read for one spot plan run.
type ReconcileInput struct {
	Requests  []int
	OnLand    []int
	Scheduled []int
	NoSpot    []int
	Members   []model.MemberRecord
}

// ReconcileResult is the set of boats needing a place, one per member.
type ReconcileResult struct {
	Boats []model.ReconciledBoat
	// Added lists members that were scheduled or on land without a request.
	Added []int
	// Unknown lists requested members missing from the member table.
	Unknown []int
	// Matched counts member rows before deduplication.
	Matched int
}

// Reconcile merges the request, on-land and scheduled sets into the boats that
// need handling this season.
//
// Scheduled and on-land members without a request are treated as having
// requested a spot, so no boat already booked or on land drops off the map.
// Requested is false exactly for members in NoSpot.
func Reconcile(in ReconcileInput, logger *zap.Logger) ReconcileResult {
	var res ReconcileResult

	requests := make(map[int]struct{}, len(in.Requests))
	for _, id := range in.Requests {
		requests[id] = struct{}{}
	}
	// ordered so the warnings come out stable
	merged := append([]int(nil), in.Requests...)
	add := func(ids []int, why string) {
		for _, id := range ids {
			if _, ok := requests[id]; ok {
				continue
			}
			logger.Warn("member not in requests, but "+why, zap.Int("member", id))
			requests[id] = struct{}{}
			merged = append(merged, id)
			res.Added = append(res.Added, id)
		}
	}
	add(in.Scheduled, "booked for dry dock")
	add(in.OnLand, "already on land")

	known := make(map[int]struct{}, len(in.Members))
	for _, m := range in.Members {
		known[m.MemberID] = struct{}{}
	}
	seen := make(map[int]struct{}, len(merged))
	for _, id := range merged {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := known[id]; !ok {
			logger.Warn("member not found in member file", zap.Int("member", id))
			res.Unknown = append(res.Unknown, id)
		}
	}

	noSpot := make(map[int]struct{}, len(in.NoSpot))
	for _, id := range in.NoSpot {
		noSpot[id] = struct{}{}
	}

	byMember := make(map[int]model.ReconciledBoat)
	var order []int
	for _, m := range in.Members {
		if _, ok := requests[m.MemberID]; !ok {
			continue
		}
		res.Matched++
		_, declined := noSpot[m.MemberID]
		if _, ok := byMember[m.MemberID]; !ok {
			order = append(order, m.MemberID)
		}
		byMember[m.MemberID] = model.ReconciledBoat{
			Member:    m.MemberID,
			Name:      m.LastName,
			Length:    m.BoatLength + BoatMargin,
			Width:     roundUpHalf(m.BoatWidth + BoatMargin),
			Requested: !declined,
		}
	}

	res.Boats = make([]model.ReconciledBoat, 0, len(order))
	for _, id := range order {
		res.Boats = append(res.Boats, byMember[id])
	}
	logger.Info("reconciled boats",
		zap.Int("matched", res.Matched),
		zap.Int("unique", len(res.Boats)),
		zap.Int("added", len(res.Added)),
		zap.Int("unknown", len(res.Unknown)),
	)
	return res
}

func roundUpHalf(v float64) float64 {
	return math.Ceil(v*2) / 2
}
