package merge

import (
	"reflect"
	"testing"
)

func TestEntitiesUnionsDisjointFields(t *testing.T) {
	existing := map[string]any{"name": "Ada"}
	incoming := map[string]any{"email": "ada@example.com"}
	got := Entities(existing, incoming)
	want := map[string]any{"name": "Ada", "email": "ada@example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestEntitiesIncomingWinsOnConflict(t *testing.T) {
	existing := map[string]any{"name": "Ada", "age": 30}
	incoming := map[string]any{"name": "Ada Lovelace"}
	got := Entities(existing, incoming)
	if got["name"] != "Ada Lovelace" {
		t.Errorf("got name %v, want incoming to win", got["name"])
	}
	if got["age"] != 30 {
		t.Errorf("got age %v, want existing field preserved", got["age"])
	}
}

func TestEntitiesDoesNotMutateInputs(t *testing.T) {
	existing := map[string]any{"name": "Ada"}
	incoming := map[string]any{"name": "Ada Lovelace"}
	Entities(existing, incoming)
	if existing["name"] != "Ada" {
		t.Errorf("existing was mutated: %v", existing)
	}
}

func TestTablesMergesPerKey(t *testing.T) {
	base := map[string]map[string]any{
		"User:1": {"name": "Ada", "age": 30},
		"User:2": {"name": "Grace"},
	}
	incoming := map[string]map[string]any{
		"User:1": {"age": 31},
		"User:3": {"name": "Linus"},
	}
	got := Tables(base, incoming)

	if got["User:1"]["name"] != "Ada" || got["User:1"]["age"] != 31 {
		t.Errorf("User:1 merged incorrectly: %v", got["User:1"])
	}
	if got["User:2"]["name"] != "Grace" {
		t.Errorf("User:2 untouched key lost: %v", got["User:2"])
	}
	if got["User:3"]["name"] != "Linus" {
		t.Errorf("User:3 new key missing: %v", got["User:3"])
	}
	if len(base) != 2 {
		t.Errorf("base table was mutated: %v", base)
	}
}
