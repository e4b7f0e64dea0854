package models

import (
	"time"

	"github.com/dpshade/coverdraft/internal/catalog"
)

// DateLayout is the format used for the default date field.
const DateLayout = "January 2, 2006"

// FormData holds one string per catalog field.
type FormData struct {
	FullName          string `json:"fullName" yaml:"full_name"`
	YourAddress       string `json:"yourAddress" yaml:"your_address"`
	CityStateZip      string `json:"cityStateZip" yaml:"city_state_zip"`
	EmailAddress      string `json:"emailAddress" yaml:"email_address"`
	PhoneNumber       string `json:"phoneNumber" yaml:"phone_number"`
	Date              string `json:"date" yaml:"date"`
	HiringManagerName string `json:"hiringManagerName" yaml:"hiring_manager_name"`
	CompanyName       string `json:"companyName" yaml:"company_name"`
	CompanyAddress    string `json:"companyAddress" yaml:"company_address"`
	JobTitle          string `json:"jobTitle" yaml:"job_title"`
	YearsOfExperience string `json:"yearsOfExperience" yaml:"years_of_experience"`
	KeySkills         string `json:"keySkills" yaml:"key_skills"`
	PreviousCompany   string `json:"previousCompany" yaml:"previous_company"`
}

// DefaultFormData returns an empty form with the date set to now.
func DefaultFormData(now time.Time) FormData {
	return FormData{Date: now.Format(DateLayout)}
}

func (f *FormData) slot(field catalog.Field) *string {
	switch field {
	case catalog.FieldFullName:
		return &f.FullName
	case catalog.FieldYourAddress:
		return &f.YourAddress
	case catalog.FieldCityStateZip:
		return &f.CityStateZip
	case catalog.FieldEmailAddress:
		return &f.EmailAddress
	case catalog.FieldPhoneNumber:
		return &f.PhoneNumber
	case catalog.FieldDate:
		return &f.Date
	case catalog.FieldHiringManagerName:
		return &f.HiringManagerName
	case catalog.FieldCompanyName:
		return &f.CompanyName
	case catalog.FieldCompanyAddress:
		return &f.CompanyAddress
	case catalog.FieldJobTitle:
		return &f.JobTitle
	case catalog.FieldYearsOfExperience:
		return &f.YearsOfExperience
	case catalog.FieldKeySkills:
		return &f.KeySkills
	case catalog.FieldPreviousCompany:
		return &f.PreviousCompany
	}
	return nil
}

// Get returns the value of field. Unknown fields read as empty.
func (f FormData) Get(field catalog.Field) string {
	if p := f.slot(field); p != nil {
		return *p
	}
	return ""
}

// Set assigns value to field and reports whether the field exists.
func (f *FormData) Set(field catalog.Field, value string) bool {
	p := f.slot(field)
	if p == nil {
		return false
	}
	*p = value
	return true
}

// Values returns the form as a field→value map.
func (f FormData) Values() map[catalog.Field]string {
	fields := AllFields()
	out := make(map[catalog.Field]string, len(fields))
	for _, field := range fields {
		out[field] = f.Get(field)
	}
	return out
}

// FormDataFromMap builds a form from loosely keyed input, returning the keys
// that did not match a field.
func FormDataFromMap(values map[string]string) (FormData, []string) {
	var f FormData
	var unknown []string
	for k, v := range values {
		if !f.Set(catalog.Field(k), v) {
			unknown = append(unknown, k)
		}
	}
	return f, unknown
}

// AllFields lists every field FormData carries, in declaration order.
func AllFields() []catalog.Field {
	return []catalog.Field{
		catalog.FieldFullName,
		catalog.FieldYourAddress,
		catalog.FieldCityStateZip,
		catalog.FieldEmailAddress,
		catalog.FieldPhoneNumber,
		catalog.FieldDate,
		catalog.FieldHiringManagerName,
		catalog.FieldCompanyName,
		catalog.FieldCompanyAddress,
		catalog.FieldJobTitle,
		catalog.FieldYearsOfExperience,
		catalog.FieldKeySkills,
		catalog.FieldPreviousCompany,
	}
}
