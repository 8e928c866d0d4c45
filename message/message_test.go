package message

import "testing"

func TestTimeoutResponse(t *testing.T) {
	resp := Timeout(42)
	if resp.Dispatch != 42 {
		t.Fatalf("expected dispatch 42, got %d", resp.Dispatch)
	}
	if resp.Ok {
		t.Fatal("expected Ok=false for a Timeout Response")
	}
	if resp.ErrorMsg == "" {
		t.Fatal("expected a non-empty ErrorMsg")
	}
}

func TestQueryEmbedsMessage(t *testing.T) {
	q := Query{
		Message: Message{Dispatch: 7, MessageData: []byte("payload")},
		Handler: "echo",
	}
	if q.Dispatch != 7 {
		t.Fatalf("expected embedded Dispatch 7, got %d", q.Dispatch)
	}
	if string(q.MessageData) != "payload" {
		t.Fatalf("expected embedded MessageData 'payload', got %q", q.MessageData)
	}
}

func TestResponseEmbedsMessage(t *testing.T) {
	r := Response{
		Message: Message{Dispatch: 3, MessageData: []byte("result")},
		Ok:      true,
	}
	if r.Dispatch != 3 {
		t.Fatalf("expected embedded Dispatch 3, got %d", r.Dispatch)
	}
	if !r.Ok || r.ErrorMsg != "" {
		t.Fatalf("expected a successful Response with no error, got %+v", r)
	}
}
