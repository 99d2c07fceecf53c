package models_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrramp/arecheoedu/internal/models"
)

func TestPresentation_RoundTripKeepsUnknownFields(t *testing.T) {
	in := `{"id":"p1","name":"Stratigraphy","uploadedAt":"2024-03-01","slides":[{"id":1,"title":"Layers","content":"Oldest at the bottom","notes":"say it slowly"}],"topic":"dating","difficulty":3}`

	var p models.Presentation
	require.NoError(t, json.Unmarshal([]byte(in), &p))

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "dating", p.Topic)
	assert.JSONEq(t, `3`, string(p.Extra["difficulty"]))
	require.Len(t, p.Slides, 1)
	assert.JSONEq(t, `"say it slowly"`, string(p.Slides[0].Extra["notes"]))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestPresentation_RoundTripKeepsMemberSet(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		out  string
	}{
		{
			name: "empty strings and arrays survive",
			in:   `{"id":"p1","name":"n","uploadedAt":"2024-01-01","slides":[],"preQuizUrl":"","subtopics":[]}`,
		},
		{
			name: "missing uploadedAt stays missing",
			in:   `{"id":"p1","name":"n","slides":[{"id":0,"title":"","content":"c"}]}`,
		},
		{
			name: "no slides member",
			in:   `{"id":"p1","name":"n"}`,
		},
		{
			name: "null member is dropped",
			in:   `{"id":"p1","name":"n","slides":null}`,
			out:  `{"id":"p1","name":"n"}`,
		},
		{
			name: "member names match case-insensitively",
			in:   `{"id":"p1","Name":"Upper","slides":[]}`,
			out:  `{"id":"p1","name":"Upper","slides":[]}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var p models.Presentation
			require.NoError(t, json.Unmarshal([]byte(tc.in), &p))

			out, err := json.Marshal(p)
			require.NoError(t, err)

			want := tc.out
			if want == "" {
				want = tc.in
			}
			assert.JSONEq(t, want, string(out))
		})
	}
}

func TestPresentation_BuiltInCodeOmitsEmptyMembers(t *testing.T) {
	out, err := json.Marshal(models.Presentation{ID: "p1", Name: "n"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1","name":"n"}`, string(out))
}

func TestPresentation_CaseFoldedMemberIsNotExtra(t *testing.T) {
	var p models.Presentation
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","Name":"Upper"}`), &p))

	assert.Equal(t, "Upper", p.Name)
	assert.Nil(t, p.Extra)
}

func TestPresentation_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		p       models.Presentation
		wantErr bool
	}{
		{
			name: "valid",
			p:    models.Presentation{ID: "p1", Name: "Intro"},
		},
		{
			name:    "missing id",
			p:       models.Presentation{Name: "Intro"},
			wantErr: true,
		},
		{
			name:    "missing name",
			p:       models.Presentation{ID: "p1"},
			wantErr: true,
		},
		{
			name:    "negative slide id",
			p:       models.Presentation{ID: "p1", Name: "Intro", Slides: []models.Slide{{ID: -1}}},
			wantErr: true,
		},
		{
			name: "short quiz urls are fine",
			p:    models.Presentation{ID: "p1", Name: "Intro", PreQuizURL: "x", PostQuizURL: "y"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPresentations_Without(t *testing.T) {
	ps := models.Presentations{{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: "c"}}

	got := ps.Without("a")

	var ids []string
	for _, p := range got {
		ids = append(ids, p.ID)
	}

	if diff := cmp.Diff([]string{"b", "c"}, ids); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, ps.Without("missing"), 4)
}

func TestQuizUpsert_StripsFileID(t *testing.T) {
	var u models.QuizUpsert
	require.NoError(t, json.Unmarshal([]byte(`{"fileId":"p2","preQuizUrl":"x","postQuizUrl":"y"}`), &u))

	assert.Equal(t, "p2", u.FileID)
	assert.Nil(t, u.Links.Extra)

	stored, err := json.Marshal(u.Links)
	require.NoError(t, err)
	assert.JSONEq(t, `{"preQuizUrl":"x","postQuizUrl":"y"}`, string(stored))

	echo, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fileId":"p2","preQuizUrl":"x","postQuizUrl":"y"}`, string(echo))
}

func TestQuizUpsert_KeepsEmptyLinks(t *testing.T) {
	var u models.QuizUpsert
	require.NoError(t, json.Unmarshal([]byte(`{"fileId":"p2","preQuizUrl":"x","postQuizUrl":"","googleSlidesUrl":""}`), &u))

	stored, err := json.Marshal(u.Links)
	require.NoError(t, err)
	assert.JSONEq(t, `{"preQuizUrl":"x","postQuizUrl":"","googleSlidesUrl":""}`, string(stored))

	echo, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fileId":"p2","preQuizUrl":"x","postQuizUrl":"","googleSlidesUrl":""}`, string(echo))
}

func TestQuizUpsert_Validate(t *testing.T) {
	var u models.QuizUpsert
	require.NoError(t, json.Unmarshal([]byte(`{"preQuizUrl":"x"}`), &u))
	assert.Error(t, u.Validate())

	err := json.Unmarshal([]byte(`{"fileId":7}`), &u)
	assert.Error(t, err)
}

func TestQuizMap_EmptyEncodesAsObject(t *testing.T) {
	out, err := json.Marshal(models.QuizMap{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}
