package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `[
	{"id":1,"name":"A","state":"TX","categories":["Park"],"coordinates":[30,-97]},
	{"id":2,"name":"B","state":"CA","categories":["Museum"],"coordinates":[34,-118]}
]`

func TestHTTPSource_Load(t *testing.T) {
	var requested string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	loader := NewLoader(HTTPSource{BaseURL: srv.URL + "/static/", Client: srv.Client()}, zerolog.Nop())
	records, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/static/attractions.json", requested)
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, "B", records[1].Name)
}

func TestHTTPSource_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	loader := NewLoader(HTTPSource{BaseURL: srv.URL, Client: srv.Client()}, zerolog.Nop())
	_, err := loader.Load(context.Background())

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusNotFound, te.StatusCode)
}

func TestLoader_ParseError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"truncated", `[{"id":1`},
		{"object instead of array", `{"id":1}`},
		{"empty document", ``},
		{"array of scalars", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "attractions.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := NewLoader(FileSource{Path: path}, zerolog.Nop()).Load(context.Background())
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestFileSource_Missing(t *testing.T) {
	_, err := NewLoader(FileSource{Path: filepath.Join(t.TempDir(), "nope.json")}, zerolog.Nop()).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestParse_Lenient(t *testing.T) {
	records, err := Parse([]byte(`[
		{"id":1,"name":"No coords"},
		{"id":2,"state":5,"categories":"Park","coordinates":[1]},
		{"id":3,"categories":["Park",7," Zoo "],"coordinates":["x","y"]},
		null
	]`))
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Nil(t, records[0].Coordinates)
	assert.Nil(t, records[1].State)
	assert.Nil(t, records[1].Categories)
	assert.Equal(t, []float64{1}, records[1].Coordinates)
	assert.Equal(t, []string{"Park", " Zoo "}, records[2].Categories)
	assert.Nil(t, records[2].Coordinates)
	assert.Equal(t, int64(0), records[3].ID)
}

func TestParse_MalformedFieldsDoNotFailTheLoad(t *testing.T) {
	records, err := Parse([]byte(`[
		{"id":"a1","name":"String id","coordinates":[30,-97]},
		{"id":true,"name":"Bool id"},
		{"id":1.5,"name":"Fractional id"},
		{"id":2,"name":"Null lat","coordinates":[null,-97]},
		{"id":3,"name":"Null lon","coordinates":[30,null]},
		{"id":4,"name":"Null category","categories":[null,"Park"],"coordinates":[30,-97]}
	]`))
	require.NoError(t, err)
	require.Len(t, records, 6)

	assert.Equal(t, int64(0), records[0].ID)
	assert.Equal(t, []float64{30, -97}, records[0].Coordinates)
	assert.Equal(t, int64(0), records[1].ID)
	assert.Equal(t, int64(0), records[2].ID)

	for _, r := range records[3:5] {
		_, ok := r.Position()
		assert.False(t, ok, r.Name)
	}
	assert.Equal(t, []string{"Park"}, records[5].Categories)
}

func TestParse_EmptyArray(t *testing.T) {
	records, err := Parse([]byte(` [] `))
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

type stubObjects struct {
	data []byte
	err  error
}

func (s stubObjects) GetObject(_ context.Context, _, _ string) ([]byte, error) {
	return s.data, s.err
}

func TestS3Source(t *testing.T) {
	ok := S3Source{Store: stubObjects{data: []byte(sample)}, Bucket: "b", Key: "datasets/a.json"}
	records, err := NewLoader(ok, zerolog.Nop()).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	denied := S3Source{
		Store:    stubObjects{err: errors.New("access denied")},
		Bucket:   "b",
		Key:      "datasets/a.json",
		StatusOf: func(error) int { return http.StatusForbidden },
	}
	_, err = NewLoader(denied, zerolog.Nop()).Load(context.Background())
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusForbidden, te.StatusCode)
	assert.Equal(t, "s3://b/datasets/a.json", te.Source)
}

type stubPayloads []byte

func (s stubPayloads) Payloads(context.Context) ([]byte, error) { return s, nil }

func TestPostgresSource(t *testing.T) {
	src := PostgresSource{Reader: stubPayloads(sample), Table: "attractions"}
	records, err := NewLoader(src, zerolog.Nop()).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "postgres:attractions", src.Name())
}
