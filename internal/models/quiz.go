package models

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goccy/go-json"
)

// QuizLinks is the value stored in the quizzes collection for one presentation
type QuizLinks struct {
	PreQuizURL      string `json:"preQuizUrl,omitempty"`
	PostQuizURL     string `json:"postQuizUrl,omitempty"`
	GoogleSlidesURL string `json:"googleSlidesUrl,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

type quizLinksAlias QuizLinks

var quizLinksMembers = declaredMembers(quizLinksAlias{})

func (q QuizLinks) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.PreQuizURL, validation.Length(0, maxURLLength)),
		validation.Field(&q.PostQuizURL, validation.Length(0, maxURLLength)),
		validation.Field(&q.GoogleSlidesURL, validation.Length(0, maxURLLength)),
	)
}

func (q QuizLinks) MarshalJSON() ([]byte, error) {
	encoded, err := json.Marshal(quizLinksAlias(q))
	if err != nil {
		return nil, err
	}

	return withExtra(encoded, q.Extra)
}

func (q *QuizLinks) UnmarshalJSON(data []byte) error {
	var a quizLinksAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	extra, err := quizLinksMembers.leftovers(data, a)
	if err != nil {
		return err
	}

	*q = QuizLinks(a)
	q.Extra = extra

	return nil
}

// QuizMap maps a presentation id to its quiz links.
type QuizMap map[string]QuizLinks

func (m QuizMap) Validate() error {
	return validation.Validate(map[string]QuizLinks(m))
}

func (m QuizMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(map[string]QuizLinks(m))
}

const fileIDField = "fileId"

// QuizUpsert is the body of a quiz links upsert: the routing key fileId next
// to the fields that are stored under it.
type QuizUpsert struct {
	FileID string    `json:"fileId"`
	Links  QuizLinks `json:"links"`
}

func (u QuizUpsert) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.FileID, validation.Required.Error("fileId is required"), validation.Length(1, maxIDLength)),
		validation.Field(&u.Links),
	)
}

// MarshalJSON renders {fileId, ...links}.
func (u QuizUpsert) MarshalJSON() ([]byte, error) {
	encoded, err := json.Marshal(u.Links)
	if err != nil {
		return nil, err
	}

	id, err := json.Marshal(u.FileID)
	if err != nil {
		return nil, err
	}

	return withExtra(encoded, map[string]json.RawMessage{fileIDField: id})
}

func (u *QuizUpsert) UnmarshalJSON(data []byte) error {
	var links QuizLinks
	if err := json.Unmarshal(data, &links); err != nil {
		return err
	}

	var fileID string
	if raw, ok := links.Extra[fileIDField]; ok {
		if err := json.Unmarshal(raw, &fileID); err != nil {
			return fmt.Errorf("fileId must be a string")
		}
		delete(links.Extra, fileIDField)
	}

	if len(links.Extra) == 0 {
		links.Extra = nil
	}

	u.FileID = fileID
	u.Links = links

	return nil
}
