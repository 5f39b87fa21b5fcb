package entitykey

import "testing"

func TestQueryReverseQueryRoundTrip(t *testing.T) {
	key, err := Query("GetUser", map[string]any{"id": "42"})
	if err != nil {
		t.Fatal(err)
	}
	name, variablesJSON, ok := ReverseQuery(key)
	if !ok {
		t.Fatalf("ReverseQuery(%q) ok=false", key)
	}
	if name != "GetUser" {
		t.Errorf("got name %q, want GetUser", name)
	}
	if variablesJSON != `{"id":"42"}` {
		t.Errorf("got variables %q", variablesJSON)
	}
}

func TestQueryRejectsColonInName(t *testing.T) {
	if _, err := Query("Get:User", nil); err == nil {
		t.Error("expected error for name containing separator")
	}
}

func TestQueryNilVariablesStable(t *testing.T) {
	k1, err := Query("Ping", nil)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := Query("Ping", nil)
	if err != nil {
		t.Fatal(err)
	}
	if k1 != k2 {
		t.Errorf("keys differ: %q vs %q", k1, k2)
	}
}

func TestEntityKeyFormat(t *testing.T) {
	if got := Entity("User", "42"); got != "User:42" {
		t.Errorf("got %q, want User:42", got)
	}
}
