package storage

import (
	"context"
	"time"

	"github.com/dpshade/coverdraft/internal/models"
)

const starterLetterHeader = `[Full Name]
[Your Address]
[City, State ZIP]
[Email Address]
[Phone Number]

[Date]

[Hiring Manager Name]
[Company Name]
[Company Address]

Dear [Hiring Manager Name],
`

const starterLetterFooter = `
Thank you for considering my application. I would welcome the chance to discuss how I can contribute to [Company Name].

Sincerely,
[Full Name]`

// StarterTemplates returns the templates shipped with a new library.
func StarterTemplates() []*models.Template {
	created := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	starters := []struct {
		id, title, industry, level, preview, body string
	}{
		{
			"software-engineer-senior", "Software Engineer", "Technology", "Senior Level",
			"Senior engineer who ships reliable systems and mentors teams.",
			`
I am writing to apply for the [Job Title] position at [Company Name]. With [Years of Experience] years of experience building production systems, most recently at [Previous Company], I have led projects from design through launch and kept them running at scale.

My core strengths are [Key Skills]. I enjoy turning ambiguous problems into simple, well-tested services, and I have mentored engineers through code review and pairing.
`,
		},
		{
			"software-developer-entry", "Junior Software Developer", "Technology", "Entry Level",
			"Recent graduate eager to grow as a developer.",
			`
I am excited to apply for the [Job Title] role at [Company Name]. Through coursework and projects I have built a foundation in [Key Skills], and I am eager to keep learning alongside an experienced team.
`,
		},
		{
			"registered-nurse", "Registered Nurse", "Healthcare", "Mid Level",
			"Compassionate nurse with hands-on clinical experience.",
			`
I am applying for the [Job Title] position at [Company Name]. Over [Years of Experience] years of clinical practice at [Previous Company], I have delivered patient-centred care in fast-paced units and collaborated closely with physicians and families.

My skills include [Key Skills].
`,
		},
		{
			"financial-analyst", "Financial Analyst", "Finance", "Mid Level",
			"Analyst who turns data into clear recommendations.",
			`
I am writing to express my interest in the [Job Title] role at [Company Name]. At [Previous Company] I spent [Years of Experience] years building forecasts, variance analyses and board reporting.

I bring strong skills in [Key Skills] and a habit of explaining numbers in plain language.
`,
		},
		{
			"marketing-manager", "Marketing Manager", "Marketing", "Senior Level",
			"Marketing leader with a record of growing brands.",
			`
I am pleased to apply for the [Job Title] position at [Company Name]. In [Years of Experience] years of marketing leadership, most recently at [Previous Company], I have planned campaigns that grew pipeline and brand awareness.

My expertise covers [Key Skills].
`,
		},
		{
			"teacher-entry", "Elementary School Teacher", "Education", "Entry Level",
			"New teacher committed to engaging classrooms.",
			`
I am excited to apply for the [Job Title] opening at [Company Name]. My student teaching experience taught me how to build lessons that keep every learner engaged, and I would bring [Key Skills] to your school.
`,
		},
		{
			"sales-executive", "Sales Director", "Sales", "Executive",
			"Sales executive who builds and leads high-performing teams.",
			`
I am writing regarding the [Job Title] role at [Company Name]. Across [Years of Experience] years in sales leadership, including at [Previous Company], I have built teams that consistently exceeded targets.

I would bring [Key Skills] to your organization.
`,
		},
	}

	out := make([]*models.Template, 0, len(starters))
	for _, s := range starters {
		out = append(out, &models.Template{
			ID:              s.id,
			JobTitle:        s.title,
			Industry:        s.industry,
			ExperienceLevel: s.level,
			Preview:         s.preview,
			Content:         starterLetterHeader + s.body + starterLetterFooter,
			CreatedAt:       created,
			UpdatedAt:       created,
		})
	}
	return out
}

// SeedStarterTemplates writes the starter templates that are not already in
// the library and returns how many were written.
func (s *TemplateStore) SeedStarterTemplates(ctx context.Context, overwrite bool) (int, error) {
	written := 0
	for _, t := range StarterTemplates() {
		if !overwrite {
			if _, err := s.Get(ctx, t.ID); err == nil {
				continue
			}
		}
		if err := s.SaveTemplate(t); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
