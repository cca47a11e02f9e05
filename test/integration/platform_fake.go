package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	gosync "sync"

	"github.com/gorilla/mux"
)

// fakePlatformToken is the bot token the fake platform expects.
const fakePlatformToken = "integration-bot-token"

type fakeGuild struct {
	roles   map[string]bool
	members map[string]map[string]bool
}

// FakePlatform is an in-memory stand-in for the community platform's
// bot API. It serves the three endpoints the synchronizer uses: member
// lookup, guild role listing and single-role mutation.
type FakePlatform struct {
	mu     gosync.Mutex
	guilds map[string]*fakeGuild
	server *httptest.Server
}

// StartFakePlatform starts the fake platform on an ephemeral port.
func StartFakePlatform() *FakePlatform {
	p := &FakePlatform{guilds: map[string]*fakeGuild{}}

	router := mux.NewRouter()
	router.HandleFunc("/guilds/{guild}/roles", p.handleGuildRoles).Methods(http.MethodGet)
	router.HandleFunc("/guilds/{guild}/members/{member}", p.handleMember).Methods(http.MethodGet)
	router.HandleFunc("/guilds/{guild}/members/{member}/roles/{role}", p.handleRoleMutation).
		Methods(http.MethodPut, http.MethodDelete)

	p.server = httptest.NewServer(p.requireBotToken(router))
	return p
}

// URL returns the fake platform's base URL.
func (p *FakePlatform) URL() string {
	return p.server.URL
}

// Close shuts the fake platform down.
func (p *FakePlatform) Close() {
	p.server.Close()
}

// Reset drops all guild state.
func (p *FakePlatform) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.guilds = map[string]*fakeGuild{}
}

// AddGuild creates a guild with the given roles.
func (p *FakePlatform) AddGuild(guildID string, roleIDs ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	guild := &fakeGuild{roles: map[string]bool{}, members: map[string]map[string]bool{}}
	for _, id := range roleIDs {
		guild.roles[id] = true
	}
	p.guilds[guildID] = guild
}

// AddMember puts a member in a guild with the given starting roles.
func (p *FakePlatform) AddMember(guildID, memberID string, roleIDs ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	guild, ok := p.guilds[guildID]
	if !ok {
		guild = &fakeGuild{roles: map[string]bool{}, members: map[string]map[string]bool{}}
		p.guilds[guildID] = guild
	}
	held := map[string]bool{}
	for _, id := range roleIDs {
		held[id] = true
	}
	guild.members[memberID] = held
}

// MemberRoleIDs returns the member's current roles, nil when absent.
func (p *FakePlatform) MemberRoleIDs(guildID, memberID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	guild, ok := p.guilds[guildID]
	if !ok {
		return nil
	}
	held, ok := guild.members[memberID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(held))
	for id := range held {
		ids = append(ids, id)
	}
	return ids
}

func (p *FakePlatform) requireBotToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bot "+fakePlatformToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (p *FakePlatform) handleGuildRoles(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	guild, ok := p.guilds[mux.Vars(r)["guild"]]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	type role struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	payload := make([]role, 0, len(guild.roles))
	for id := range guild.roles {
		payload = append(payload, role{ID: id, Name: "role-" + id})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func (p *FakePlatform) handleMember(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	vars := mux.Vars(r)
	guild, ok := p.guilds[vars["guild"]]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	held, ok := guild.members[vars["member"]]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	ids := make([]string, 0, len(held))
	for id := range held {
		ids = append(ids, id)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{"roles": ids})
}

func (p *FakePlatform) handleRoleMutation(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	vars := mux.Vars(r)
	guild, ok := p.guilds[vars["guild"]]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	held, ok := guild.members[vars["member"]]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	roleID := vars["role"]
	if r.Method == http.MethodPut {
		held[roleID] = true
	} else {
		delete(held, roleID)
	}
	w.WriteHeader(http.StatusNoContent)
}
