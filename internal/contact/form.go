// Package contact validates contact form submissions and delivers them
// through EmailJS.
package contact

import (
	"errors"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"inserview.studio/web/internal/showcase"
)

// Placeholders sent when optional fields are left blank.
const (
	PhonePlaceholder   = "(미입력)"
	ServicePlaceholder = "(미선택)"
)

// Form is a contact form submission.
type Form struct {
	Name    string `validate:"required,max=100"`
	Email   string `validate:"required,email,max=254"`
	Phone   string `validate:"omitempty,max=40,phone"`
	Service string `validate:"omitempty,service"`
	Message string `validate:"required,max=5000"`
}

// FormFromValues reads and trims a posted form.
func FormFromValues(v url.Values) Form {
	return Form{
		Name:    strings.TrimSpace(v.Get("name")),
		Email:   strings.TrimSpace(v.Get("email")),
		Phone:   strings.TrimSpace(v.Get("phone")),
		Service: strings.TrimSpace(v.Get("service")),
		Message: strings.TrimSpace(v.Get("message")),
	}
}

// ValidationError maps lower-case field names onto the failing rule.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k+"="+e.Fields[k])
	}
	sort.Strings(names)
	return "contact: invalid form: " + strings.Join(names, ", ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("service", func(fl validator.FieldLevel) bool {
			return showcase.ServiceTitle(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			for _, r := range fl.Field().String() {
				if !strings.ContainsRune("0123456789+-() ", r) {
					return false
				}
			}
			return true
		})
		validate = v
	})
	return validate
}

// Validate checks the form and returns a *ValidationError on failure.
func (f Form) Validate() error {
	err := formValidator().Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: map[string]string{}}
	for _, fe := range verrs {
		out.Fields[strings.ToLower(fe.Field())] = fe.Tag()
	}
	return out
}

// TemplateParams are the variables the EmailJS template expects.
type TemplateParams struct {
	ToEmail   string `json:"to_email"`
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
	Phone     string `json:"phone"`
	Service   string `json:"service"`
	Message   string `json:"message"`
}

// Params builds the template variables, substituting placeholders for
// blank optional fields.
func (f Form) Params(recipient string) TemplateParams {
	p := TemplateParams{
		ToEmail:   recipient,
		FromName:  f.Name,
		FromEmail: f.Email,
		Phone:     f.Phone,
		Service:   f.Service,
		Message:   f.Message,
	}
	if p.Phone == "" {
		p.Phone = PhonePlaceholder
	}
	if p.Service == "" {
		p.Service = ServicePlaceholder
	}
	return p
}
