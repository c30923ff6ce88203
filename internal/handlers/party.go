// internal/handlers/party.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/partylabs/ideasthesia/internal/kv"
	"github.com/partylabs/ideasthesia/internal/party"
)

// maxPartyNameLen mirrors the form validation: names are 1 to 20 characters.
const maxPartyNameLen = 20

type partyNameRequest struct {
	Name string `json:"name"`
}

type createPartyResponse struct {
	Status   party.CreateStatus `json:"status"`
	Message  string             `json:"message"`
	Redirect string             `json:"redirect"`
	Link     string             `json:"link,omitempty"`
}

// decodePartyName reads and validates the party name from the request body.
// A bad name writes the error response and returns ok=false.
func decodePartyName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req partyNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > maxPartyNameLen {
		http.Error(w, "party name must be 1-20 characters", http.StatusBadRequest)
		return "", false
	}
	return name, true
}

// writePartyError maps directory errors onto HTTP statuses. Corrupt records
// and unreachable storage both answer 500; neither is retried.
func writePartyError(w http.ResponseWriter, err error) {
	var corrupt *party.CorruptRecordError
	switch {
	case errors.Is(err, party.ErrNotFound):
		http.Error(w, "no such party", http.StatusNotFound)
	case errors.Is(err, party.ErrEmptyName):
		http.Error(w, "party name must not be empty", http.StatusBadRequest)
	case errors.Is(err, party.ErrClosed):
		http.Error(w, "that game has already ended", http.StatusConflict)
	case errors.Is(err, kv.ErrModified):
		http.Error(w, "party changed concurrently, try again", http.StatusConflict)
	case errors.As(err, &corrupt):
		http.Error(w, "stored party record is corrupt", http.StatusInternalServerError)
	default:
		http.Error(w, "party storage unavailable", http.StatusInternalServerError)
	}
}

// CreatePartyHandler applies the create policy: new name => create, closed
// record => recreate under a fresh id, open record => conflict pointing the
// user at the join flow. The response message is display-ready.
func CreatePartyHandler(ps *PartyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		name, ok := decodePartyName(w, r)
		if !ok {
			return
		}

		res, err := ps.Directory.Create(r.Context(), name, ident.Nickname)
		if err != nil {
			writePartyError(w, err)
			return
		}

		resp := createPartyResponse{
			Status:   res.Status,
			Message:  res.Message,
			Redirect: "/party/list",
		}
		if res.Party != nil {
			resp.Link = party.JoinLink(res.Party.ID)
		}

		w.Header().Set("Content-Type", "application/json")
		switch res.Status {
		case party.StatusExists:
			w.WriteHeader(http.StatusConflict)
		default:
			w.WriteHeader(http.StatusCreated)
		}
		json.NewEncoder(w).Encode(resp)
	}
}

// ListPartiesHandler returns the current roster of parties.
func ListPartiesHandler(ps *PartyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireIdentity(w, r); !ok {
			return
		}

		roster, err := ps.Directory.List(r.Context())
		if err != nil {
			writePartyError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(roster)
	}
}

// JoinPartyHandler adds the acting player to a named party.
func JoinPartyHandler(ps *PartyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		name, ok := decodePartyName(w, r)
		if !ok {
			return
		}

		p, err := ps.Directory.Join(r.Context(), name, ident.Nickname)
		if err != nil {
			writePartyError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(party.DisplayRecord{
			Name:    p.Name,
			Players: p.Players(),
			Link:    party.JoinLink(p.ID),
		})
	}
}

// LeavePartyHandler removes the acting player; the party closes itself when
// the last player leaves.
func LeavePartyHandler(ps *PartyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		name, ok := decodePartyName(w, r)
		if !ok {
			return
		}

		p, err := ps.Directory.Leave(r.Context(), name, ident.Nickname)
		if err != nil {
			writePartyError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			Name   string `json:"name"`
			Closed bool   `json:"closed"`
		}{Name: p.Name, Closed: p.Closed})
	}
}

// GamePageHandler resolves a join link (/games/ideasthesia/<id>) to the open
// party it points at. Links to replaced, closed or unknown parties answer 404.
func GamePageHandler(ps *PartyServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireIdentity(w, r); !ok {
			return
		}

		idStr := strings.TrimPrefix(r.URL.Path, "/games/ideasthesia/")
		id, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		p, err := ps.Directory.FindByID(r.Context(), id)
		if err != nil {
			writePartyError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(party.DisplayRecord{
			Name:    p.Name,
			Players: p.Players(),
			Link:    party.JoinLink(p.ID),
		})
	}
}
