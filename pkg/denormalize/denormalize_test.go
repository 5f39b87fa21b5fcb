package denormalize

import (
	"reflect"
	"testing"

	"github.com/always-cache/graphcache/pkg/jsonvalue"
)

func TestResolveInlinesReferencedEntity(t *testing.T) {
	skeleton := map[string]any{"user": jsonvalue.Ref("User:1")}
	base := map[string]map[string]any{
		"User:1": {"id": "1", "name": "Ada"},
	}
	got := Resolve(skeleton, nil, base)
	want := map[string]any{"user": map[string]any{"id": "1", "name": "Ada"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolvePrefersOverlayOverBase(t *testing.T) {
	skeleton := jsonvalue.Ref("User:1")
	base := map[string]map[string]any{"User:1": {"id": "1", "name": "Ada"}}
	overlay := map[string]map[string]any{"User:1": {"id": "1", "name": "Ada (pending)"}}
	got := Resolve(skeleton, overlay, base)
	want := map[string]any{"id": "1", "name": "Ada (pending)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolvePassesThroughUnresolvedReference(t *testing.T) {
	skeleton := jsonvalue.Ref("User:999")
	got := Resolve(skeleton, nil, map[string]map[string]any{})
	want := jsonvalue.Ref("User:999")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want passthrough ref %v", got, want)
	}
}

func TestResolveTerminatesOnCycle(t *testing.T) {
	base := map[string]map[string]any{
		"User:1": {"id": "1", "friend": jsonvalue.Ref("User:2")},
		"User:2": {"id": "2", "friend": jsonvalue.Ref("User:1")},
	}
	got := Resolve(jsonvalue.Ref("User:1"), nil, base)
	obj, ok := jsonvalue.Object(got)
	if !ok {
		t.Fatalf("got %v, want object", got)
	}
	friend, ok := jsonvalue.Object(obj["friend"])
	if !ok {
		t.Fatalf("friend resolved to %v, want object", obj["friend"])
	}
	friendOfFriend := friend["friend"]
	if _, isRef := jsonvalue.RefKey(friendOfFriend); !isRef {
		t.Errorf("cycle did not terminate as a passthrough ref: %v", friendOfFriend)
	}
}

func TestResolveDoesNotSuppressIndependentSiblingReferences(t *testing.T) {
	skeleton := map[string]any{
		"a": jsonvalue.Ref("User:1"),
		"b": jsonvalue.Ref("User:1"),
	}
	base := map[string]map[string]any{"User:1": {"id": "1", "name": "Ada"}}
	got := Resolve(skeleton, nil, base)
	obj, _ := jsonvalue.Object(got)
	want := map[string]any{"id": "1", "name": "Ada"}
	if !reflect.DeepEqual(obj["a"], want) || !reflect.DeepEqual(obj["b"], want) {
		t.Errorf("sibling references not both resolved: %v", obj)
	}
}
