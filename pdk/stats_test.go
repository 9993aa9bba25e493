package pdk

import (
	"testing"
)

/*
 * Test routes counting and ordering
 */
func TestStats(t *testing.T) {
	s := NewStats()

	s.Update("put", "success", 3)
	s.Update("put", "failure", 5)
	s.Update("put", "success", 4)
	s.Update("put", "original", 0)
	s.Update("query", "original", 1)

	top, err := s.Top(0)
	if err != nil {
		t.Fatalf("Can't export stats: %s", err.Error())
	}

	put := top["put"]
	if len(put) != 2 {
		t.Fatalf("Invalid amount of 'put' routes: %d, expected: 2", len(put))
	}

	if put[0].Relationship != "success" || put[0].Count != 7 {
		t.Errorf("Invalid busiest route: %+v, expected: success/7", put[0])
	}

	if put[1].Relationship != "failure" || put[1].Count != 5 {
		t.Errorf("Invalid second route: %+v, expected: failure/5", put[1])
	}

	top, err = s.Top(1)
	if err != nil {
		t.Fatalf("Can't export stats: %s", err.Error())
	}

	if len(top["put"]) != 1 || len(top["query"]) != 1 {
		t.Errorf("Limit is not applied: %v", top)
	}
}
