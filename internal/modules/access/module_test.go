package access

import (
	"context"
	"reflect"
	"strconv"
	"testing"

	"go.uber.org/zap"

	"guildhub/internal/apperr"
	"guildhub/internal/documentstore"
	"guildhub/internal/modules/audit"
	"guildhub/internal/permissions"
	"guildhub/internal/storage"
)

const guildID = "111111111111111111"

type allowAll struct{}

func (allowAll) Require(ctx context.Context, caller permissions.Caller, guildID string) (permissions.UserGuild, error) {
	return permissions.UserGuild{ID: guildID}, nil
}

func newModule() (*Module, *storage.Store) {
	store := storage.New(documentstore.NewMemory())
	return New(allowAll{}, store, audit.NewLogger(store, zap.NewNop(), 0)), store
}

var caller = permissions.Caller{UserID: "u1", AccessToken: "tok"}

func TestSetCommandAssignments(t *testing.T) {
	module, store := newModule()
	ctx := context.Background()

	got, err := module.SetCommandAssignments(ctx, caller, guildID, map[string]string{
		"Ban":   "222222222222222222",
		"<>":    "ignored",
		"embed": " 333333333333333333 ",
	})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	want := storage.CommandAssignments{"ban": "222222222222222222", "embed": "333333333333333333"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	stored, _ := store.CommandAssignments(ctx, guildID)
	if !reflect.DeepEqual(stored, want) {
		t.Fatalf("stored %v want %v", stored, want)
	}

	tooMany := make(map[string]string)
	for i := 0; i <= MaxAssignments; i++ {
		tooMany["cmd"+strconv.Itoa(i)] = "x"
	}
	if _, err := module.SetCommandAssignments(ctx, caller, guildID, tooMany); apperr.CodeOf(err) != apperr.CodeInvalidField {
		t.Fatalf("expected too many assignments, got %v", err)
	}
}

func TestSetRestrictedChannels(t *testing.T) {
	module, _ := newModule()
	ctx := context.Background()

	got, err := module.SetRestrictedChannels(ctx, caller, guildID, []string{"333333333333333333", "222222222222222222", "333333333333333333"})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	want := storage.RestrictedChannels{"333333333333333333", "222222222222222222"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}

	if _, err := module.SetRestrictedChannels(ctx, caller, guildID, []string{"general"}); apperr.CodeOf(err) != apperr.CodeInvalidSnowflake {
		t.Fatalf("expected InvalidSnowflake, got %v", err)
	}

	empty, err := module.SetRestrictedChannels(ctx, caller, guildID, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected list cleared, got %v %v", empty, err)
	}
}
