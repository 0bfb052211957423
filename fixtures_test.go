package goarg_test

import (
	"context"
	"strings"

	"github.com/reoring/goarg"
)

type TextArg struct {
	goarg.Base
	Text string `arg:"text" validate:"required|string"`
}

type FaceArg struct {
	goarg.Base
	FaceID int `arg:"face_id" validate:"required|integer"`
}

// TextMessageArg adds a runtime rule on construction.
type TextMessageArg struct {
	goarg.Base
	Text string `arg:"text" validate:"required|string"`
}

func (a *TextMessageArg) InitArg(_ context.Context, _ map[string]any) error {
	return a.WritableSchema().AddRule("text", "max:120")
}

type UnionArg struct {
	goarg.Base
	Maybe  any `arg:"maybe"`  // TextArg|null
	Either any `arg:"either"` // TextArg|FaceArg
	Scalar any `arg:"scalar"` // string|int
}

type PrimitiveArg struct {
	goarg.Base
	Name  string            `arg:"name"`
	Count int               `arg:"count"`
	Ratio float64           `arg:"ratio"`
	OK    bool              `arg:"ok"`
	Tags  []string          `arg:"tags"`
	Attrs map[string]string `arg:"attrs"`
}

type DefaultsArg struct {
	goarg.Base
	S       string
	I       int
	F       float64
	B       bool
	List    []string
	Object  map[string]any
	Ptr     *string
	Any     any
	Nested  TextArg
	Maybe   *TextArg
	Many    []TextArg
	Color   string `default:"blue"`
	Sizes   []int  `default:"[1,2,3]"`
	Enabled bool   `default:"true"`
	Limit   *int   `default:"10"`
}

type RenamedArg struct {
	goarg.Base
	FirstName string `arg:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Nick      string `json:"-"`
	Internal  string `arg:"-"`
	Age       int
}

type SecretArg struct {
	goarg.Base
	User     string `arg:"user"`
	Password string `arg:"password,skip_serialize"`
	Token    string `arg:"token,skip_init"`
}

func (a *SecretArg) InitArg(_ context.Context, input map[string]any) error {
	if s, ok := input["token"].(string); ok {
		a.Token = "tok:" + s
	}
	return nil
}

// AccessorArg routes Name through convention methods and Code through a
// registered setter.
type AccessorArg struct {
	goarg.Base
	Name string `arg:"name"`
	Code string `arg:"code"`
}

func (a *AccessorArg) SetName(v string) { a.Name = strings.ToUpper(v) }

func (a *AccessorArg) GetName() string { return "name:" + a.Name }

func (a *AccessorArg) SetCode(v string) { a.Code = "from-method:" + v }

type OuterArg struct {
	goarg.Base
	Title string  `arg:"title" validate:"required"`
	A     TextArg `arg:"a"`
	B     TextArg `arg:"b"`
}

type OptionalNestedArg struct {
	goarg.Base
	Reply *TextArg `arg:"reply"`
}

type VoteOptionArg struct {
	goarg.Base
	Label string `arg:"label" validate:"required|max:10"`
}

type VoteArg struct {
	goarg.Base
	Subject string           `arg:"subject" validate:"required"`
	Options []*VoteOptionArg `arg:"options" validate:"array|min:2"`
}

type Embedded struct {
	Shared string `arg:"shared"`
	Inner  string `arg:"inner"`
}

type EmbeddingArg struct {
	goarg.Base
	Embedded
	Shared string `arg:"outer_shared"`
}

type SanitizedArg struct {
	goarg.Base
	Bio string `arg:"bio,sanitize"`
}

type BrokenArg struct {
	goarg.Base
	Ch  chan int `arg:"ch"`
	Bad string   `arg:"bad,no_such_option"`
}

type NotBound struct {
	Name string
}

func init() {
	goarg.Define[UnionArg]().
		Union("Maybe", goarg.Branch[*TextArg](), goarg.NullBranch()).
		Union("Either", goarg.Branch[*TextArg](), goarg.Branch[*FaceArg]()).
		Union("Scalar", goarg.Branch[string](), goarg.Branch[int]()).
		MustRegister()

	goarg.Define[AccessorArg]().
		Setter("Code", func(a *AccessorArg, raw any) error {
			s, _ := raw.(string)
			a.Code = "from-define:" + s
			return nil
		}).
		MustRegister()
}
