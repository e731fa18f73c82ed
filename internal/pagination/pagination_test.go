package pagination

import "testing"

func TestPageRequestDefaults(t *testing.T) {
	tests := []struct {
		name      string
		in        PageRequest
		wantPage  int
		wantLimit int
	}{
		{"empty", PageRequest{}, 1, DefaultLimit},
		{"explicit", PageRequest{Page: 3, Limit: 10}, 3, 10},
		{"limit_capped", PageRequest{Page: 1, Limit: 500}, 1, MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.in
			req.Defaults()
			if req.Page != tt.wantPage || req.Limit != tt.wantLimit {
				t.Errorf("got page=%d limit=%d, want page=%d limit=%d", req.Page, req.Limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestPageRequestOffset(t *testing.T) {
	req := PageRequest{Page: 3, Limit: 20}
	if got := req.Offset(); got != 40 {
		t.Errorf("Offset() = %d, want 40", got)
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse[string](nil, 2, 10, 25)

	if resp.Data == nil || len(resp.Data) != 0 {
		t.Errorf("expected empty non-nil data, got %v", resp.Data)
	}
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}

	env := resp.Envelope("logs")
	if _, ok := env["logs"]; !ok {
		t.Fatal("expected items under the logs key")
	}
	if env["total"].(int64) != 25 || env["page"].(int) != 2 || env["limit"].(int) != 10 {
		t.Errorf("unexpected envelope metadata: %v", env)
	}
}
