package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marceloprado/transferdesk/internal/ledger"
	"github.com/marceloprado/transferdesk/internal/metrics"
	"github.com/marceloprado/transferdesk/internal/offer"
	"github.com/marceloprado/transferdesk/internal/roster"
)

// fakePlatform implements every engine port against an in-memory role table,
// so grants and revokes are visible to subsequent role lookups exactly like
// on the real platform.
type fakePlatform struct {
	mu    sync.Mutex
	roles map[string][]string // member ID -> role IDs
	names map[string]string

	grantErr  error
	revokeErr error
	promptErr error
	postErr   error
	notifyErr error

	prompts       []string // member IDs that received a prompt
	posts         []string // posted notice texts
	notifications map[string][]string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		roles:         make(map[string][]string),
		names:         make(map[string]string),
		notifications: make(map[string][]string),
	}
}

func (p *fakePlatform) Roles(_ context.Context, memberID string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.roles[memberID]))
	copy(out, p.roles[memberID])
	return out, nil
}

func (p *fakePlatform) CountHolders(_ context.Context, roleID string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	count := 0
	for _, roles := range p.roles {
		for _, id := range roles {
			if id == roleID {
				count++
			}
		}
	}
	return count, nil
}

func (p *fakePlatform) DisplayName(_ context.Context, memberID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if name, ok := p.names[memberID]; ok {
		return name, nil
	}
	return "", fmt.Errorf("member %s not found", memberID)
}

func (p *fakePlatform) GrantRole(_ context.Context, memberID, roleID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.grantErr != nil {
		return p.grantErr
	}
	p.roles[memberID] = append(p.roles[memberID], roleID)
	return nil
}

func (p *fakePlatform) RevokeRole(_ context.Context, memberID, roleID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.revokeErr != nil {
		return p.revokeErr
	}
	var kept []string
	for _, id := range p.roles[memberID] {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	p.roles[memberID] = kept
	return nil
}

func (p *fakePlatform) SendOfferPrompt(_ context.Context, memberID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.promptErr != nil {
		return p.promptErr
	}
	p.prompts = append(p.prompts, memberID)
	return nil
}

func (p *fakePlatform) Post(_ context.Context, _ string, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.postErr != nil {
		return p.postErr
	}
	p.posts = append(p.posts, text)
	return nil
}

func (p *fakePlatform) Notify(_ context.Context, memberID, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.notifyErr != nil {
		return p.notifyErr
	}
	p.notifications[memberID] = append(p.notifications[memberID], text)
	return nil
}

// teamRolesHeld counts how many configured team roles the member holds.
func (p *fakePlatform) teamRolesHeld(d *roster.Directory, memberID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	count := 0
	for _, id := range p.roles[memberID] {
		if _, ok := d.TeamByRole(id); ok {
			count++
		}
	}
	return count
}

// memoryLedger is an in-memory Ledger with an injectable append failure.
type memoryLedger struct {
	mu        sync.Mutex
	records   []ledger.Record
	appendErr error
}

func (l *memoryLedger) Append(_ context.Context, rec ledger.Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.appendErr != nil {
		return l.appendErr
	}
	l.records = append(l.records, rec)
	return nil
}

func (l *memoryLedger) All(_ context.Context) ([]ledger.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ledger.Record, len(l.records))
	copy(out, l.records)
	return out, nil
}

func (l *memoryLedger) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

type testEnv struct {
	engine   *Engine
	platform *fakePlatform
	ledger   *memoryLedger
	offers   *offer.Registry
	dir      *roster.Directory
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	dir, err := roster.NewDirectory([]roster.Team{
		{Name: "Alpha", RoleID: "role-alpha", RepresentativeRoleID: "rep-alpha"},
		{Name: "Beta", RoleID: "role-beta", RepresentativeRoleID: "rep-beta"},
	})
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}

	platform := newFakePlatform()
	platform.roles["rep-1"] = []string{"rep-alpha"}
	platform.roles["rep-2"] = []string{"rep-beta"}
	platform.names["rep-1"] = "Coach Ana"
	platform.names["user-1"] = "Player One"

	led := &memoryLedger{}
	offers := offer.NewRegistry(24 * time.Hour)

	if cfg.TransferChannelID == "" {
		cfg.TransferChannelID = "chan-transfers"
	}
	if cfg.PingRoleID == "" {
		cfg.PingRoleID = "role-scouts"
	}
	if cfg.BotUserID == "" {
		cfg.BotUserID = "bot-1"
	}

	eng := New(Deps{
		Directory: dir,
		Offers:    offers,
		Ledger:    led,
		Members:   platform,
		Mutator:   platform,
		Prompts:   platform,
		Announcer: platform,
		Notifier:  platform,
		Metrics:   metrics.New(),
	}, cfg)

	return &testEnv{engine: eng, platform: platform, ledger: led, offers: offers, dir: dir}
}

func TestProposeAcceptFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})

	o, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1")
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if o.TeamName != "Alpha" || o.TeamRoleID != "role-alpha" {
		t.Fatalf("unexpected offer: %+v", o)
	}
	if len(env.platform.prompts) != 1 || env.platform.prompts[0] != "user-1" {
		t.Fatalf("expected one prompt to user-1, got %v", env.platform.prompts)
	}

	rec, err := env.engine.ResolveOffer(ctx, "user-1", DecisionAccept, "user-1")
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if rec == nil {
		t.Fatal("accept must return a record")
	}
	if rec.Action != ledger.ActionHired || rec.TeamName != "Alpha" || rec.PlayerID != "user-1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.InitiatorID == nil || *rec.InitiatorID != "rep-1" {
		t.Fatalf("expected initiator rep-1, got %v", rec.InitiatorID)
	}
	if rec.PlayerDisplayName != "Player One" {
		t.Fatalf("expected resolved display name, got %q", rec.PlayerDisplayName)
	}

	// Role granted, offer gone, exactly one ledger record.
	if held := env.platform.teamRolesHeld(env.dir, "user-1"); held != 1 {
		t.Fatalf("expected user-1 to hold exactly one team role, got %d", held)
	}
	if _, err := env.offers.Get("user-1"); !errors.Is(err, offer.ErrNotFound) {
		t.Fatalf("offer should be removed after acceptance, got %v", err)
	}
	if env.ledger.len() != 1 {
		t.Fatalf("expected 1 ledger record, got %d", env.ledger.len())
	}

	// Announcement posted with a fresh roster count.
	if len(env.platform.posts) != 1 {
		t.Fatalf("expected one announcement, got %d", len(env.platform.posts))
	}
	notice := env.platform.posts[0]
	for _, want := range []string{"Transfer | Alpha", "Free →→→ Alpha", "<@user-1>", "1/20", "<@&role-scouts>"} {
		if !strings.Contains(notice, want) {
			t.Errorf("notice missing %q:\n%s", want, notice)
		}
	}

	// Representative notified.
	if n := env.platform.notifications["rep-1"]; len(n) != 1 || !strings.Contains(n[0], "accepted") {
		t.Fatalf("expected acceptance notification to rep-1, got %v", n)
	}

	// A resolved offer cannot be replayed.
	if _, err := env.engine.ResolveOffer(ctx, "user-1", DecisionAccept, "user-1"); !errors.Is(err, offer.ErrNotFound) {
		t.Fatalf("replaying a resolved offer should fail with ErrNotFound, got %v", err)
	}
	if env.ledger.len() != 1 {
		t.Fatalf("replay must not append, got %d records", env.ledger.len())
	}
}

func TestProposeDuplicate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})

	if _, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1"); err != nil {
		t.Fatalf("first propose failed: %v", err)
	}
	_, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1")
	if !errors.Is(err, offer.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if env.offers.Len() != 1 {
		t.Fatalf("registry should hold exactly one offer, got %d", env.offers.Len())
	}

	// After a decline the target can be proposed to again.
	if _, err := env.engine.ResolveOffer(ctx, "user-1", DecisionDecline, "user-1"); err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if _, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1"); err != nil {
		t.Fatalf("propose after decline failed: %v", err)
	}
}

func TestProposeValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("not a representative", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		_, err := env.engine.ProposeOffer(ctx, "user-1", "user-2")
		if !errors.Is(err, ErrNotRepresentative) {
			t.Fatalf("expected ErrNotRepresentative, got %v", err)
		}
	})

	t.Run("target is the bot", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		_, err := env.engine.ProposeOffer(ctx, "rep-1", "bot-1")
		if !errors.Is(err, ErrTargetIsBot) {
			t.Fatalf("expected ErrTargetIsBot, got %v", err)
		}
	})

	t.Run("target already employed", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		env.platform.roles["user-1"] = []string{"role-beta"}
		_, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1")
		if !errors.Is(err, ErrAlreadyEmployed) {
			t.Fatalf("expected ErrAlreadyEmployed, got %v", err)
		}
		if env.offers.Len() != 0 {
			t.Fatal("no offer should be stored on validation failure")
		}
	})

	t.Run("representative membership policy", func(t *testing.T) {
		env := newTestEnv(t, Config{RequireRepresentativeMembership: true})
		_, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1")
		if !errors.Is(err, ErrRepresentativeNotOnTeam) {
			t.Fatalf("expected ErrRepresentativeNotOnTeam, got %v", err)
		}

		env.platform.roles["rep-1"] = []string{"rep-alpha", "role-alpha"}
		if _, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1"); err != nil {
			t.Fatalf("propose with team role failed: %v", err)
		}
	})
}

func TestPromptDeliveryFailureRollsBackOffer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})
	env.platform.promptErr = errors.New("dms closed")

	_, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1")
	var derr *DeliveryError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
	if env.offers.Len() != 0 {
		t.Fatal("offer must be rolled back when the prompt cannot be delivered")
	}

	// Once delivery works again the same target can be proposed to.
	env.platform.promptErr = nil
	if _, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1"); err != nil {
		t.Fatalf("propose after delivery recovery failed: %v", err)
	}
}

func TestResolveOnlyByTarget(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})

	if _, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1"); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	_, err := env.engine.ResolveOffer(ctx, "user-1", DecisionAccept, "rep-1")
	if !errors.Is(err, ErrNotOfferTarget) {
		t.Fatalf("expected ErrNotOfferTarget, got %v", err)
	}
	if _, err := env.offers.Get("user-1"); err != nil {
		t.Fatal("offer must survive a resolution attempt by a non-target")
	}
}

func TestResolveMissingOffer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})

	_, err := env.engine.ResolveOffer(ctx, "user-1", DecisionAccept, "user-1")
	if !errors.Is(err, offer.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAcceptRaceGuard(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})

	if _, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1"); err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	// Between prompt and resolution the target joined Beta out-of-band.
	env.platform.roles["user-1"] = []string{"role-beta"}

	_, err := env.engine.ResolveOffer(ctx, "user-1", DecisionAccept, "user-1")
	if !errors.Is(err, ErrAlreadyEmployed) {
		t.Fatalf("expected ErrAlreadyEmployed, got %v", err)
	}

	// Existing employment untouched, no ledger record, no announcement.
	if held := env.platform.teamRolesHeld(env.dir, "user-1"); held != 1 {
		t.Fatalf("existing employment must be untouched, held=%d", held)
	}
	if env.ledger.len() != 0 {
		t.Fatalf("race-guarded accept must not write to the ledger, got %d", env.ledger.len())
	}
	if len(env.platform.posts) != 0 {
		t.Fatal("race-guarded accept must not announce")
	}
}

func TestDeclineHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})

	if _, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1"); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	rec, err := env.engine.ResolveOffer(ctx, "user-1", DecisionDecline, "user-1")
	if err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if rec != nil {
		t.Fatal("decline must not produce a record")
	}
	if held := env.platform.teamRolesHeld(env.dir, "user-1"); held != 0 {
		t.Fatal("decline must not grant any role")
	}
	if env.ledger.len() != 0 {
		t.Fatal("decline must not append to the ledger")
	}
	if len(env.platform.posts) != 0 {
		t.Fatal("decline must not announce")
	}
	if n := env.platform.notifications["rep-1"]; len(n) != 1 || !strings.Contains(n[0], "declined") {
		t.Fatalf("expected decline notification to rep-1, got %v", n)
	}
}

func TestGrantFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})

	if _, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1"); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	env.platform.grantErr = errors.New("missing permission")

	_, err := env.engine.ResolveOffer(ctx, "user-1", DecisionAccept, "user-1")
	var merr *MutationError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MutationError, got %v", err)
	}
	if env.ledger.len() != 0 {
		t.Fatal("failed grant must not produce a ledger record")
	}
	if _, err := env.offers.Get("user-1"); err != nil {
		t.Fatal("offer must remain after a failed grant so the user can retry")
	}
}

func TestLedgerFailureCompensatesGrant(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})

	if _, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1"); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	env.ledger.appendErr = errors.New("disk full")

	_, err := env.engine.ResolveOffer(ctx, "user-1", DecisionAccept, "user-1")
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}

	// The grant was compensated: the user holds no team role.
	if held := env.platform.teamRolesHeld(env.dir, "user-1"); held != 0 {
		t.Fatalf("expected compensating revoke, user still holds %d team roles", held)
	}
	if len(env.platform.posts) != 0 {
		t.Fatal("aborted transition must not announce")
	}
}

func TestDismissMember(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})
	env.platform.roles["user-1"] = []string{"role-alpha"}

	rec, err := env.engine.DismissMember(ctx, "rep-1", "user-1")
	if err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}
	if rec.Action != ledger.ActionReleased {
		t.Fatalf("expected released record, got %q", rec.Action)
	}
	if rec.InitiatorID == nil || *rec.InitiatorID != "rep-1" {
		t.Fatalf("expected initiator rep-1, got %v", rec.InitiatorID)
	}
	if held := env.platform.teamRolesHeld(env.dir, "user-1"); held != 0 {
		t.Fatal("dismissed member should hold no team role")
	}
	if env.ledger.len() != 1 {
		t.Fatalf("expected 1 record, got %d", env.ledger.len())
	}
	if len(env.platform.posts) != 1 || !strings.Contains(env.platform.posts[0], "Alpha →→→ Free") {
		t.Fatalf("expected leave announcement, got %v", env.platform.posts)
	}
	if n := env.platform.notifications["user-1"]; len(n) != 1 || !strings.Contains(n[0], "released") {
		t.Fatalf("expected release notification to user-1, got %v", n)
	}
}

func TestDismissValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("caller not representative", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		env.platform.roles["user-1"] = []string{"role-alpha"}
		if _, err := env.engine.DismissMember(ctx, "user-2", "user-1"); !errors.Is(err, ErrNotRepresentative) {
			t.Fatalf("expected ErrNotRepresentative, got %v", err)
		}
	})

	t.Run("target not on callers team", func(t *testing.T) {
		env := newTestEnv(t, Config{})
		env.platform.roles["user-1"] = []string{"role-beta"}
		// rep-1 represents Alpha; user-1 plays for Beta.
		if _, err := env.engine.DismissMember(ctx, "rep-1", "user-1"); !errors.Is(err, ErrNotTeamMember) {
			t.Fatalf("expected ErrNotTeamMember, got %v", err)
		}
		if held := env.platform.teamRolesHeld(env.dir, "user-1"); held != 1 {
			t.Fatal("failed dismissal must not touch roles")
		}
	})
}

func TestSelfRelease(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})
	env.platform.roles["user-1"] = []string{"role-alpha", "unrelated-role"}

	rec, err := env.engine.SelfRelease(ctx, "user-1")
	if err != nil {
		t.Fatalf("self release failed: %v", err)
	}
	if rec.Action != ledger.ActionLeft {
		t.Fatalf("expected left record, got %q", rec.Action)
	}
	if rec.InitiatorID != nil {
		t.Fatalf("self release must record a null initiator, got %v", *rec.InitiatorID)
	}
	if held := env.platform.teamRolesHeld(env.dir, "user-1"); held != 0 {
		t.Fatal("member should hold no team role after self release")
	}
	if env.ledger.len() != 1 {
		t.Fatalf("expected 1 record, got %d", env.ledger.len())
	}
}

func TestSelfReleaseWithoutTeam(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})

	if _, err := env.engine.SelfRelease(ctx, "user-1"); !errors.Is(err, ErrNotEmployed) {
		t.Fatalf("expected ErrNotEmployed, got %v", err)
	}
}

func TestMembershipInvariantUnderSequences(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})

	// propose -> accept -> self release -> propose (other team) -> accept ->
	// dismiss. After every step the user holds at most one team role.
	steps := []func() error{
		func() error { _, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1"); return err },
		func() error { _, err := env.engine.ResolveOffer(ctx, "user-1", DecisionAccept, "user-1"); return err },
		func() error { _, err := env.engine.SelfRelease(ctx, "user-1"); return err },
		func() error { _, err := env.engine.ProposeOffer(ctx, "rep-2", "user-1"); return err },
		func() error { _, err := env.engine.ResolveOffer(ctx, "user-1", DecisionAccept, "user-1"); return err },
		func() error { _, err := env.engine.DismissMember(ctx, "rep-2", "user-1"); return err },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		if held := env.platform.teamRolesHeld(env.dir, "user-1"); held > 1 {
			t.Fatalf("after step %d user holds %d team roles", i, held)
		}
	}

	// Four transitions happened: hired, left, hired, released.
	records, err := env.engine.History(ctx)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	wantActions := []string{ledger.ActionHired, ledger.ActionLeft, ledger.ActionHired, ledger.ActionReleased}
	if len(records) != len(wantActions) {
		t.Fatalf("expected %d records, got %d", len(wantActions), len(records))
	}
	for i, want := range wantActions {
		if records[i].Action != want {
			t.Errorf("record %d: expected %s, got %s", i, want, records[i].Action)
		}
	}
}

func TestConcurrentAcceptsSingleEmployment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})

	if _, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1"); err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.engine.ResolveOffer(ctx, "user-1", DecisionAccept, "user-1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one successful accept, got %d", ok)
	}
	if held := env.platform.teamRolesHeld(env.dir, "user-1"); held != 1 {
		t.Fatalf("user must hold exactly one team role, got %d", held)
	}
	if env.ledger.len() != 1 {
		t.Fatalf("expected exactly one ledger record, got %d", env.ledger.len())
	}
}

func TestAnnouncementFailureDoesNotFailTransfer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})
	env.platform.postErr = errors.New("channel gone")
	env.platform.notifyErr = errors.New("dms closed")

	if _, err := env.engine.ProposeOffer(ctx, "rep-1", "user-1"); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	rec, err := env.engine.ResolveOffer(ctx, "user-1", DecisionAccept, "user-1")
	if err != nil {
		t.Fatalf("accept must succeed despite side-channel failures: %v", err)
	}
	if rec == nil || env.ledger.len() != 1 {
		t.Fatal("transfer must commit despite announcement failure")
	}
}

func TestDisplayNameFallsBackToID(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, Config{})

	// user-9 has no display name registered in the fake platform.
	env.platform.roles["user-9"] = []string{"role-alpha"}
	rec, err := env.engine.SelfRelease(ctx, "user-9")
	if err != nil {
		t.Fatalf("self release failed: %v", err)
	}
	if rec.PlayerDisplayName != "user-9" {
		t.Fatalf("expected ID fallback, got %q", rec.PlayerDisplayName)
	}
}
