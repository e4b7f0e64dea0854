package catalog

var defaultEntries = []Entry{
	{Token: "[Full Name]", Field: FieldFullName},
	{Token: "[Your Address]", Field: FieldYourAddress},
	{Token: "[City, State ZIP]", Field: FieldCityStateZip},
	{Token: "[Email Address]", Field: FieldEmailAddress},
	{Token: "[Phone Number]", Field: FieldPhoneNumber},
	{Token: "[Date]", Field: FieldDate},
	{Token: "[Hiring Manager Name]", Field: FieldHiringManagerName},
	{Token: "[Company Name]", Field: FieldCompanyName},
	{Token: "[Company Address]", Field: FieldCompanyAddress},
	{Token: "[Job Title]", Field: FieldJobTitle},
	{Token: "[Years of Experience]", Field: FieldYearsOfExperience},
	{Token: "[Key Skills]", Field: FieldKeySkills},
	{Token: "[Previous Company]", Field: FieldPreviousCompany},
}

var defaultIndustries = []string{
	"Technology",
	"Healthcare",
	"Finance",
	"Education",
	"Marketing",
	"Sales",
	"Engineering",
	"Design",
	"Retail",
	"Hospitality",
	"Legal",
	"Nonprofit",
}

var defaultLevels = []string{
	"Entry Level",
	"Mid Level",
	"Senior Level",
	"Executive",
}

// Default builds the catalog shipped with coverdraft.
func Default() *Catalog {
	c, err := New(defaultEntries, defaultIndustries, defaultLevels)
	if err != nil {
		panic("catalog: invalid default catalog: " + err.Error())
	}
	return c
}
