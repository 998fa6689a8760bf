package ingest

import (
	"reflect"
	"testing"

	"xyian-bot/internal/knowledge"
)

func TestCollectFragments(t *testing.T) {
	data := []byte(`{
		"weapons": {
			"oracle": "Oracle staff text",
			"list": ["first entry", "second entry"]
		},
		"count": 3,
		"active": true
	}`)

	got, err := CollectFragments(data, "src")
	if err != nil {
		t.Fatalf("CollectFragments() error = %v", err)
	}

	want := []knowledge.Fragment{
		{Text: "first entry", Label: "src_weapons_list_0"},
		{Text: "second entry", Label: "src_weapons_list_1"},
		{Text: "Oracle staff text", Label: "src_weapons_oracle"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CollectFragments() = %v, want %v", got, want)
	}
}

func TestCollectFragmentsTopLevelString(t *testing.T) {
	got, err := CollectFragments([]byte(`"just text"`), "src")
	if err != nil {
		t.Fatalf("CollectFragments() error = %v", err)
	}
	if len(got) != 1 || got[0].Label != "src" || got[0].Text != "just text" {
		t.Errorf("CollectFragments() = %v, want one fragment labeled src", got)
	}
}

func TestCollectFragmentsInvalidJSON(t *testing.T) {
	if _, err := CollectFragments([]byte(`{not json`), "src"); err == nil {
		t.Fatal("CollectFragments() accepted malformed JSON, want error")
	}
}

func TestCollectFragmentsDeterministicOrder(t *testing.T) {
	data := []byte(`{"b": "two", "a": "one", "c": "three"}`)

	first, err := CollectFragments(data, "src")
	if err != nil {
		t.Fatalf("CollectFragments() error = %v", err)
	}
	second, err := CollectFragments(data, "src")
	if err != nil {
		t.Fatalf("CollectFragments() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("CollectFragments() order not deterministic: %v vs %v", first, second)
	}
	if first[0].Label != "src_a" || first[1].Label != "src_b" || first[2].Label != "src_c" {
		t.Errorf("CollectFragments() labels = %v, want sorted key order", first)
	}
}
