// SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company
// SPDX-License-Identifier: Apache-2.0

// Package api wires the placement engine behind a thin HTTP surface, the
// only consumer-facing piece spec.md explicitly treats as external (§1:
// "Out of scope... persistence, HTTP routing, identity, authentication").
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/gorilla/mux"

	"github.com/sapcc/go-bits/httpapi"
	"github.com/sapcc/go-bits/respondwith"

	"github.com/sapcc/placement/internal/core"
	"github.com/sapcc/placement/internal/db"
	"github.com/sapcc/placement/internal/placement"
)

func parseUUIDs(values []string) ([]uuid.UUID, error) {
	result := make([]uuid.UUID, len(values))
	for i, v := range values {
		parsed, err := uuid.FromString(v)
		if err != nil {
			return nil, errors.New("member_of_any contains a malformed uuid: " + v)
		}
		result[i] = parsed
	}
	return result, nil
}

// v1Provider serves the placement engine's one HTTP operation. Modeled on
// the teacher's v1Provider (internal/api/core.go): a small struct holding
// the shared dependencies, with AddTo() registering routes on a mux.Router.
type v1Provider struct {
	Store   db.Store
	Catalog *core.Catalog
}

// NewV1API creates an httpapi.API serving POST /v1/candidates.
func NewV1API(store db.Store, catalog *core.Catalog) httpapi.API {
	return &v1Provider{Store: store, Catalog: catalog}
}

// AddTo implements the httpapi.API interface.
func (p *v1Provider) AddTo(r *mux.Router) {
	r.Methods("POST").Path("/v1/candidates").HandlerFunc(p.GetCandidates)
}

type requestGroupPayload struct {
	Resources       map[string]uint64 `json:"resources"`
	RequiredTraits  []string          `json:"required_traits"`
	UseSameProvider bool              `json:"use_same_provider"`
	MemberOfAny     []string          `json:"member_of_any"`
}

type candidatesRequestPayload struct {
	RequestGroups []requestGroupPayload `json:"request_groups"`
}

type allocationTuplePayload struct {
	ProviderID int64  `json:"provider_id"`
	ClassID    int64  `json:"class_id"`
	Amount     uint64 `json:"amount"`
}

type providerResourcePayload struct {
	ClassID  int64  `json:"class_id"`
	Capacity uint64 `json:"capacity"`
	Used     uint64 `json:"used"`
}

type providerSummaryPayload struct {
	ProviderID int64                     `json:"provider_id"`
	Resources  []providerResourcePayload `json:"resources"`
	TraitIDs   []int64                   `json:"trait_ids"`
}

type candidatesResponsePayload struct {
	AllocationRequests [][]allocationTuplePayload `json:"allocation_requests"`
	ProviderSummaries  []providerSummaryPayload   `json:"provider_summaries"`
}

// GetCandidates handles POST /v1/candidates, the HTTP binding of
// placement.GetCandidates (spec §6).
func (p *v1Provider) GetCandidates(w http.ResponseWriter, r *http.Request) {
	httpapi.IdentifyEndpoint(r, "/v1/candidates")

	var payload candidatesRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "request body is not valid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	groups := make([]core.RequestGroup, len(payload.RequestGroups))
	for i, g := range payload.RequestGroups {
		memberOf, err := parseUUIDs(g.MemberOfAny)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		groups[i] = core.RequestGroup{
			Resources:       g.Resources,
			RequiredTraits:  g.RequiredTraits,
			UseSameProvider: g.UseSameProvider,
			MemberOfAny:     memberOf,
		}
	}

	result, err := placement.GetCandidates(r.Context(), p.Store, p.Catalog, groups)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	respondwith.JSON(w, http.StatusOK, toCandidatesResponsePayload(result))
}

func toCandidatesResponsePayload(result placement.Result) candidatesResponsePayload {
	requests := make([][]allocationTuplePayload, len(result.AllocationRequests))
	for i, req := range result.AllocationRequests {
		tuples := make([]allocationTuplePayload, len(req.Allocations))
		for j, t := range req.Allocations {
			tuples[j] = allocationTuplePayload{ProviderID: int64(t.ProviderID), ClassID: int64(t.ClassID), Amount: t.Amount}
		}
		requests[i] = tuples
	}
	summaries := make([]providerSummaryPayload, len(result.ProviderSummaries))
	for i, s := range result.ProviderSummaries {
		resources := make([]providerResourcePayload, len(s.Resources))
		for j, res := range s.Resources {
			resources[j] = providerResourcePayload{ClassID: int64(res.ClassID), Capacity: res.Capacity, Used: res.Used}
		}
		traitIDs := make([]int64, len(s.TraitIDs))
		for j, id := range s.TraitIDs {
			traitIDs[j] = int64(id)
		}
		summaries[i] = providerSummaryPayload{ProviderID: int64(s.ProviderID), Resources: resources, TraitIDs: traitIDs}
	}
	return candidatesResponsePayload{AllocationRequests: requests, ProviderSummaries: summaries}
}

// writeEngineError maps a placement.Error's Kind to an HTTP status, per
// spec §7's error taxonomy.
func writeEngineError(w http.ResponseWriter, err error) {
	kind := placement.InvalidArgument
	var placementErr *placement.Error
	if errors.As(err, &placementErr) {
		kind = placementErr.Kind
	}
	switch kind {
	case placement.InvalidArgument, placement.UnknownTrait:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case placement.Cancelled:
		http.Error(w, err.Error(), http.StatusRequestTimeout)
	default:
		respondwith.ErrorText(w, err)
	}
}
