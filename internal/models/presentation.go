package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goccy/go-json"
)

const (
	maxIDLength    = 256
	maxNameLength  = 512
	maxURLLength   = 2048
	maxTitleLength = 1000
	maxTopicLength = 256
)

// Slide is a single slide of a presentation
type Slide struct {
	ID       int    `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	Content  string `json:"content,omitempty"`
	ImageSrc string `json:"imageSrc,omitempty"`

	// Extra holds the members the typed fields do not reproduce: undeclared
	// ones and declared ones sent empty.
	Extra map[string]json.RawMessage `json:"-"`
}

type slideAlias Slide

var slideMembers = declaredMembers(slideAlias{})

func (s Slide) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ID, validation.Min(0)),
		validation.Field(&s.Title, validation.Length(0, maxTitleLength)),
	)
}

func (s Slide) MarshalJSON() ([]byte, error) {
	encoded, err := json.Marshal(slideAlias(s))
	if err != nil {
		return nil, err
	}

	return withExtra(encoded, s.Extra)
}

func (s *Slide) UnmarshalJSON(data []byte) error {
	var a slideAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	extra, err := slideMembers.leftovers(data, a)
	if err != nil {
		return err
	}

	*s = Slide(a)
	s.Extra = extra

	return nil
}

// Presentation is an element of the presentations collection
type Presentation struct {
	ID              string   `json:"id,omitempty"`
	Name            string   `json:"name,omitempty"`
	UploadedAt      string   `json:"uploadedAt,omitempty"`
	Slides          []Slide  `json:"slides,omitempty"`
	PreQuizURL      string   `json:"preQuizUrl,omitempty"`
	PostQuizURL     string   `json:"postQuizUrl,omitempty"`
	GoogleSlidesURL string   `json:"googleSlidesUrl,omitempty"`
	Topic           string   `json:"topic,omitempty"`
	Subtopics       []string `json:"subtopics,omitempty"`

	// Extra holds the members the typed fields do not reproduce: undeclared
	// ones and declared ones sent empty. They are stored and returned
	// unchanged, so a record reads back exactly as it was written.
	Extra map[string]json.RawMessage `json:"-"`
}

type presentationAlias Presentation

var presentationMembers = declaredMembers(presentationAlias{})

func (p Presentation) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.ID, validation.Required, validation.Length(1, maxIDLength)),
		validation.Field(&p.Name, validation.Required, validation.Length(1, maxNameLength)),
		validation.Field(&p.Slides),
		validation.Field(&p.PreQuizURL, validation.Length(0, maxURLLength)),
		validation.Field(&p.PostQuizURL, validation.Length(0, maxURLLength)),
		validation.Field(&p.GoogleSlidesURL, validation.Length(0, maxURLLength)),
		validation.Field(&p.Topic, validation.Length(0, maxTopicLength)),
		validation.Field(&p.Subtopics, validation.Each(validation.Length(0, maxTopicLength))),
	)
}

func (p Presentation) MarshalJSON() ([]byte, error) {
	encoded, err := json.Marshal(presentationAlias(p))
	if err != nil {
		return nil, err
	}

	return withExtra(encoded, p.Extra)
}

func (p *Presentation) UnmarshalJSON(data []byte) error {
	var a presentationAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	extra, err := presentationMembers.leftovers(data, a)
	if err != nil {
		return err
	}

	*p = Presentation(a)
	p.Extra = extra

	return nil
}

// Presentations is the whole presentations collection, in insertion order.
type Presentations []Presentation

func (ps Presentations) Validate() error {
	return validation.Validate([]Presentation(ps))
}

// Without returns the presentations whose id differs from id.
func (ps Presentations) Without(id string) Presentations {
	out := make(Presentations, 0, len(ps))
	for _, p := range ps {
		if p.ID != id {
			out = append(out, p)
		}
	}

	return out
}
