package export

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/conorfennell/nerd/internal/config"
	"github.com/conorfennell/nerd/internal/domain"
)

type fakeTopics []domain.Topic

func (f fakeTopics) List(context.Context) ([]domain.Topic, error) {
	return f, nil
}

type fakeCards []domain.Card

func (f fakeCards) List(_ context.Context, scope domain.Scope) ([]domain.Card, error) {
	var out []domain.Card
	for _, c := range f {
		if c.TopicID == scope.TopicID {
			out = append(out, c)
		}
	}
	return out, nil
}

func sample(t *testing.T) Snapshot {
	t.Helper()
	snap, err := Take(context.Background(),
		fakeTopics{{ID: 1, Name: "Math"}, {ID: 3, Name: "History"}},
		fakeCards{
			{ID: 10, Title: "WWI", Question: "When did it start?", Answer: "1914", TopicID: 3},
			{ID: 11, Title: "WWII", Question: "When did it end?", TopicID: 3},
		},
	)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	return snap
}

func TestTake(t *testing.T) {
	snap := sample(t)

	if len(snap.Topics) != 2 || snap.Topics[0].Name != "Math" || snap.Topics[1].Name != "History" {
		t.Fatalf("Expected Math then History but got %+v", snap.Topics)
	}
	if snap.Topics[0].Cards == nil || len(snap.Topics[0].Cards) != 0 {
		t.Errorf("Expected an empty card list for Math but got %v", snap.Topics[0].Cards)
	}
	if snap.CardCount() != 2 {
		t.Errorf("Expected 2 cards but got %d", snap.CardCount())
	}
}

func TestEncode(t *testing.T) {
	snap := sample(t)

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := snap.Encode(&buf, "json"); err != nil {
			t.Fatalf("encode: %v", err)
		}
		var got Snapshot
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Topics[1].Cards[0].Answer != "1914" {
			t.Errorf("Expected the WWI answer but got %+v", got.Topics[1].Cards[0])
		}
		if !strings.Contains(buf.String(), `"topic_id": 3`) {
			t.Errorf("Expected snake_case keys but got %s", buf.String())
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := snap.Encode(&buf, "yaml"); err != nil {
			t.Fatalf("encode: %v", err)
		}
		var got Snapshot
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Topics[1].Cards[1].Title != "WWII" {
			t.Errorf("Expected WWII but got %+v", got.Topics[1].Cards[1])
		}
		if !strings.Contains(buf.String(), "name: History") {
			t.Errorf("Expected a History topic but got %s", buf.String())
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if err := snap.Encode(io.Discard, "xml"); err == nil {
			t.Error("Expected an error for an unknown format")
		}
	})
}

func TestParseS3URL(t *testing.T) {
	testCases := []struct {
		target     string
		wantBucket string
		wantKey    string
		wantS3     bool
		wantErr    bool
	}{
		{target: "s3://backups/nerd/snap.json", wantBucket: "backups", wantKey: "nerd/snap.json", wantS3: true},
		{target: "s3://backups", wantS3: true, wantErr: true},
		{target: "out/snap.json"},
		{target: "/tmp/snap.yaml"},
	}

	for _, tc := range testCases {
		t.Run(tc.target, func(t *testing.T) {
			bucket, key, isS3, err := ParseS3URL(tc.target)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Expected error %v but got %v", tc.wantErr, err)
			}
			if isS3 != tc.wantS3 || bucket != tc.wantBucket || key != tc.wantKey {
				t.Errorf("Expected %s %s %v but got %s %s %v", tc.wantBucket, tc.wantKey, tc.wantS3, bucket, key, isS3)
			}
		})
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snap.json")
	sink, err := NewSink(context.Background(), path, config.S3{})
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if err := sink.Put(context.Background(), []byte("{}"), "application/json"); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "{}" {
		t.Errorf("Expected {} in %s but got %q (%v)", path, data, err)
	}
}

func TestS3Sink(t *testing.T) {
	var mu sync.Mutex
	var method, path string
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		if strings.HasPrefix(r.URL.Path, "/missing/") {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchBucket</Code><Message>The specified bucket does not exist</Message></Error>`)
			return
		}
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	cfg := config.S3{Endpoint: srv.URL, Region: "us-east-1", AccessKey: "key", SecretKey: "secret", UsePathStyle: true}
	ctx := context.Background()

	sink, err := NewSink(ctx, "s3://backups/nerd/snap.json", cfg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if sink.String() != "s3://backups/nerd/snap.json" {
		t.Errorf("Unexpected sink %s", sink)
	}
	if err := sink.Put(ctx, []byte(`{"topics":[]}`), "application/json"); err != nil {
		t.Fatalf("put: %v", err)
	}
	mu.Lock()
	if method != http.MethodPut || path != "/backups/nerd/snap.json" {
		t.Errorf("Expected PUT /backups/nerd/snap.json but got %s %s", method, path)
	}
	if !bytes.Contains(body, []byte(`{"topics":[]}`)) {
		t.Errorf("Expected the snapshot in the upload but got %q", body)
	}
	mu.Unlock()

	missing, err := NewSink(ctx, "s3://missing/snap.json", cfg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	err = missing.Put(ctx, []byte("{}"), "application/json")
	if err == nil || err.Error() != "bucket missing does not exist" {
		t.Errorf("Expected a missing bucket error but got %v", err)
	}
}
