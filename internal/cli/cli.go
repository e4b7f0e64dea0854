package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dpshade/coverdraft/internal/catalog"
	"github.com/dpshade/coverdraft/internal/clipboard"
	"github.com/dpshade/coverdraft/internal/errors"
	"github.com/dpshade/coverdraft/internal/importer"
	"github.com/dpshade/coverdraft/internal/logger"
	"github.com/dpshade/coverdraft/internal/models"
	"github.com/dpshade/coverdraft/internal/renderer"
	"github.com/dpshade/coverdraft/internal/service"
	"github.com/dpshade/coverdraft/internal/storage"
	"github.com/dpshade/coverdraft/internal/validation"
)

// CLI provides headless command-line interface functionality
type CLI struct {
	service   *service.Service
	validator *validation.Validator
	errors    *errors.CLIErrorHandler
	clipboard *clipboard.Clipboard
	out       io.Writer
	log       *logger.Logger
}

// Option configures a CLI.
type Option func(*CLI)

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(c *CLI) { c.out = w }
}

// WithClipboard replaces the system clipboard.
func WithClipboard(cb *clipboard.Clipboard) Option {
	return func(c *CLI) { c.clipboard = cb }
}

// WithVerbose includes error details in failure messages.
func WithVerbose(verbose bool) Option {
	return func(c *CLI) { c.errors.Verbose = verbose }
}

// NewCLI creates a new CLI instance
func NewCLI(svc *service.Service, log *logger.Logger, opts ...Option) *CLI {
	if log == nil {
		log = logger.NewNop()
	}
	c := &CLI{
		service:   svc,
		validator: validation.NewValidator(svc.Catalog()),
		errors:    errors.NewCLIErrorHandler(false, log),
		clipboard: clipboard.System,
		out:       os.Stdout,
		log:       log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExecuteCommand processes a CLI command. Failures come back formatted for
// the terminal.
func (c *CLI) ExecuteCommand(ctx context.Context, args []string) error {
	if err := c.dispatch(ctx, args); err != nil {
		return c.errors.HandleError(err)
	}
	return nil
}

func (c *CLI) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "init":
		return c.initLibrary(ctx)
	case "templates", "ls":
		return c.listTemplates(ctx, commandArgs)
	case "search":
		return c.searchTemplates(ctx, commandArgs)
	case "template", "show":
		return c.showTemplate(ctx, commandArgs)
	case "fields":
		return c.listFields()
	case "render":
		return c.renderTemplate(ctx, commandArgs)
	case "letters":
		return c.listLetters(ctx, commandArgs)
	case "letter":
		return c.showLetter(ctx, commandArgs)
	case "save":
		return c.saveLetter(ctx, commandArgs)
	case "duplicate":
		return c.duplicateLetter(ctx, commandArgs)
	case "delete", "rm":
		return c.deleteLetter(ctx, commandArgs)
	case "export":
		return c.exportLetter(ctx, commandArgs)
	case "copy":
		return c.copyLetter(ctx, commandArgs)
	case "filters":
		return c.handleFilters(ctx, commandArgs)
	case "login":
		return c.login(commandArgs)
	case "logout":
		return c.logout()
	case "whoami":
		return c.whoami(ctx)
	case "import-resume":
		return c.importResume(ctx, commandArgs)
	case "import-templates":
		return c.importTemplates(ctx, commandArgs)
	case "help":
		return c.printHelp(commandArgs)
	default:
		return errors.CommandNotFoundError(command).WithDetails("use 'help' for usage information")
	}
}

// flagSet is the result of the hand-rolled flag scan shared by all commands.
type flagSet struct {
	positional []string
	values     map[string]string
	sets       []string
	bools      map[string]bool
}

// parseFlags splits args into positional arguments, --name value pairs,
// repeated --set entries and boolean switches.
func parseFlags(args []string, boolFlags ...string) flagSet {
	fs := flagSet{values: map[string]string{}, bools: map[string]bool{}}
	isBool := map[string]bool{}
	for _, b := range boolFlags {
		isBool[b] = true
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			fs.positional = append(fs.positional, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		value := ""
		hasValue := false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value, hasValue = name[:eq], name[eq+1:], true
		}
		if isBool[name] {
			fs.bools[name] = true
			continue
		}
		if !hasValue && i+1 < len(args) {
			value = args[i+1]
			i++
		}
		if name == "set" || name == "s" {
			fs.sets = append(fs.sets, value)
			continue
		}
		fs.values[name] = value
	}
	return fs
}

func (fs flagSet) get(names ...string) string {
	for _, n := range names {
		if v, ok := fs.values[n]; ok {
			return v
		}
	}
	return ""
}

// formFromSets builds a form from field=value pairs. Keys may be field names
// ("fullName") or token labels ("Full Name" or "[Full Name]").
func (c *CLI) formFromSets(sets []string) (models.FormData, error) {
	var form models.FormData
	cat := c.service.Catalog()
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		if !ok {
			return form, errors.InvalidInputError(fmt.Sprintf("--set expects field=value, got %q", set))
		}
		key = strings.TrimSpace(key)
		field := catalog.Field(key)
		if !cat.HasField(field) {
			token := key
			if !strings.HasPrefix(token, "[") {
				token = "[" + token + "]"
			}
			f, known := cat.FieldForToken(token)
			if !known {
				return form, errors.InvalidInputError("unknown field " + key).
					WithDetails("run 'coverdraft fields' to list the fields")
			}
			field = f
		}
		form.Set(field, value)
	}
	return form, nil
}

func (c *CLI) writeJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *CLI) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *CLI) initLibrary(ctx context.Context) error {
	n, err := c.service.InitLibrary(ctx)
	if err != nil {
		return err
	}
	c.printf("Library ready (%d starter templates added)\n", n)
	return nil
}

// listTemplates lists templates, optionally filtered
func (c *CLI) listTemplates(ctx context.Context, args []string) error {
	fs := parseFlags(args)
	params := map[string]interface{}{}
	for _, key := range []string{"industry", "level", "search"} {
		if v, ok := fs.values[key]; ok {
			params[key] = v
		}
	}
	if format := fs.get("format", "f"); format != "" {
		params["format"] = format
	}
	if result := c.validator.Validate(validation.SchemaListTemplates, params); !result.Valid {
		return result.ToAppError()
	}

	templates, err := c.service.ListTemplates(ctx, storage.TemplateFilter{
		Industry:        fs.get("industry"),
		ExperienceLevel: fs.get("level"),
		Search:          fs.get("search"),
	})
	if err != nil {
		return err
	}
	return c.formatTemplates(templates, fs.get("format", "f"))
}

// searchTemplates fuzzy-searches templates
func (c *CLI) searchTemplates(ctx context.Context, args []string) error {
	fs := parseFlags(args)
	query := strings.Join(fs.positional, " ")
	if strings.TrimSpace(query) == "" {
		return errors.NewAppError(errors.ErrCodeMissingField, "search requires a query")
	}
	templates, err := c.service.SearchTemplates(ctx, query)
	if err != nil {
		return err
	}
	return c.formatTemplates(templates, fs.get("format", "f"))
}

// formatTemplates formats templates for output
func (c *CLI) formatTemplates(templates []*models.Template, format string) error {
	switch format {
	case "json":
		return c.writeJSON(templates)
	case "ids":
		for _, t := range templates {
			c.printf("%s\n", t.ID)
		}
	case "table":
		c.printf("%-28s %-30s %-14s %s\n", "ID", "Job Title", "Industry", "Level")
		c.printf("%s\n", strings.Repeat("-", 88))
		for _, t := range templates {
			title := t.JobTitle
			if len(title) > 30 {
				title = title[:27] + "..."
			}
			c.printf("%-28s %-30s %-14s %s\n", t.ID, title, t.Industry, t.ExperienceLevel)
		}
	default:
		for _, t := range templates {
			c.printf("%s - %s\n", t.ID, t.JobTitle)
			c.printf("  %s · %s\n", t.Industry, t.ExperienceLevel)
			if t.Preview != "" {
				c.printf("  %s\n", t.Preview)
			}
			c.printf("\n")
		}
	}
	return nil
}

// showTemplate displays a template with the tokens it uses
func (c *CLI) showTemplate(ctx context.Context, args []string) error {
	fs := parseFlags(args)
	if len(fs.positional) == 0 {
		return errors.NewAppError(errors.ErrCodeMissingField, "template requires a template ID")
	}
	t, err := c.service.GetTemplate(ctx, fs.positional[0])
	if err != nil {
		return err
	}

	if fs.get("format", "f") == "json" {
		return c.writeJSON(t)
	}
	c.printf("ID: %s\n", t.ID)
	c.printf("Job Title: %s\n", t.JobTitle)
	c.printf("Industry: %s\n", t.Industry)
	c.printf("Experience Level: %s\n", t.ExperienceLevel)
	if t.Preview != "" {
		c.printf("Preview: %s\n", t.Preview)
	}
	if tokens := c.service.Engine().ExtractTokens(t.Content); len(tokens) > 0 {
		c.printf("Tokens: %s\n", strings.Join(tokens, ", "))
	}
	c.printf("\nContent:\n%s\n", t.Content)
	return nil
}

// listFields prints the token catalog
func (c *CLI) listFields() error {
	required := map[catalog.Field]bool{}
	for _, f := range renderer.RequiredFields {
		required[f] = true
	}
	c.printf("%-22s %-24s %s\n", "Field", "Token", "Label")
	c.printf("%s\n", strings.Repeat("-", 70))
	for _, e := range c.service.Catalog().Entries() {
		label := c.service.Engine().FormatFieldLabel(e.Field)
		if required[e.Field] {
			label += " *"
		}
		c.printf("%-22s %-24s %s\n", e.Field, e.Token, label)
	}
	c.printf("\n* required\n")
	return nil
}

// renderTemplate fills a template from --set values
func (c *CLI) renderTemplate(ctx context.Context, args []string) error {
	fs := parseFlags(args, "copy", "png")
	if len(fs.positional) == 0 {
		return errors.NewAppError(errors.ErrCodeMissingField, "render requires a template ID")
	}
	form, err := c.formFromSets(fs.sets)
	if err != nil {
		return err
	}
	result, err := c.service.RenderTemplate(ctx, fs.positional[0], form)
	if err != nil {
		return err
	}

	if fs.get("format", "f") == "json" {
		if err := c.writeJSON(result); err != nil {
			return err
		}
	} else {
		c.printf("%s\n", result.Content)
		if n := len(result.UnfilledTokens); n > 0 {
			c.printf("\n%d fields remaining: %s\n", n, strings.Join(result.UnfilledTokens, ", "))
		}
		if !result.Validation.IsValid {
			labels := make([]string, 0, len(result.Validation.MissingFields))
			for _, f := range result.Validation.MissingFields {
				labels = append(labels, c.service.Engine().FormatFieldLabel(f))
			}
			c.printf("Missing required: %s\n", strings.Join(labels, ", "))
		}
	}

	if fs.bools["copy"] {
		msg, err := c.clipboard.CopyWithFallback(result.Content)
		if err != nil {
			return err
		}
		c.printf("%s\n", msg)
	}
	if name := fs.get("export", "o"); name != "" {
		format := service.FormatText
		if fs.bools["png"] {
			format = service.FormatPNG
		}
		path, err := c.service.Export(ctx, result.Content, name, format)
		if err != nil {
			return err
		}
		c.printf("Exported to %s\n", path)
	}
	return nil
}

// listLetters lists the signed-in user's letters
func (c *CLI) listLetters(ctx context.Context, args []string) error {
	fs := parseFlags(args)
	letters, err := c.service.ListLetters(ctx)
	if err != nil {
		return err
	}

	switch fs.get("format", "f") {
	case "json":
		return c.writeJSON(letters)
	case "ids":
		for _, l := range letters {
			c.printf("%s\n", l.ID)
		}
	default:
		if len(letters) == 0 {
			c.printf("No saved letters\n")
			return nil
		}
		c.printf("%-36s %-34s %s\n", "ID", "Title", "Updated")
		c.printf("%s\n", strings.Repeat("-", 88))
		for _, l := range letters {
			title := l.Title
			if len(title) > 34 {
				title = title[:31] + "..."
			}
			c.printf("%-36s %-34s %s\n", l.ID, title, l.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
	}
	return nil
}

// showLetter prints one letter
func (c *CLI) showLetter(ctx context.Context, args []string) error {
	fs := parseFlags(args)
	if len(fs.positional) == 0 {
		return errors.NewAppError(errors.ErrCodeMissingField, "letter requires a letter ID")
	}
	letter, err := c.service.GetLetter(ctx, fs.positional[0])
	if err != nil {
		return err
	}
	if fs.get("format", "f") == "json" {
		return c.writeJSON(letter)
	}
	c.printf("ID: %s\n", letter.ID)
	c.printf("Title: %s\n", letter.Title)
	if letter.TemplateID != "" {
		c.printf("Template: %s\n", letter.TemplateID)
	}
	c.printf("Created: %s\n", letter.CreatedAt.Local().Format("2006-01-02 15:04"))
	c.printf("Updated: %s\n", letter.UpdatedAt.Local().Format("2006-01-02 15:04"))
	c.printf("\n%s\n", letter.Content)
	return nil
}

// saveLetter renders a template and stores it as a new letter
func (c *CLI) saveLetter(ctx context.Context, args []string) error {
	fs := parseFlags(args)
	if len(fs.positional) == 0 {
		return errors.NewAppError(errors.ErrCodeMissingField, "save requires a template ID")
	}
	form, err := c.formFromSets(fs.sets)
	if err != nil {
		return err
	}
	letter, err := c.service.SaveLetter(ctx, fs.positional[0], fs.get("title", "t"), form)
	if err != nil {
		return err
	}
	c.printf("Saved letter %q (%s)\n", letter.Title, letter.ID)
	return nil
}

func (c *CLI) duplicateLetter(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewAppError(errors.ErrCodeMissingField, "duplicate requires a letter ID")
	}
	letter, err := c.service.DuplicateLetter(ctx, args[0])
	if err != nil {
		return err
	}
	c.printf("Created %q (%s)\n", letter.Title, letter.ID)
	return nil
}

func (c *CLI) deleteLetter(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewAppError(errors.ErrCodeMissingField, "delete requires a letter ID")
	}
	if err := c.service.DeleteLetter(ctx, args[0]); err != nil {
		return err
	}
	c.printf("Deleted letter %s\n", args[0])
	return nil
}

// exportLetter writes a saved letter to the export directory
func (c *CLI) exportLetter(ctx context.Context, args []string) error {
	fs := parseFlags(args, "png")
	if len(fs.positional) == 0 {
		return errors.NewAppError(errors.ErrCodeMissingField, "export requires a letter ID")
	}
	format := service.FormatText
	if fs.bools["png"] {
		format = service.FormatPNG
	}
	path, err := c.service.ExportLetter(ctx, fs.positional[0], format)
	if err != nil {
		return err
	}
	c.printf("Exported to %s\n", path)
	return nil
}

// copyLetter copies a saved letter to the clipboard
func (c *CLI) copyLetter(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.NewAppError(errors.ErrCodeMissingField, "copy requires a letter ID")
	}
	letter, err := c.service.GetLetter(ctx, args[0])
	if err != nil {
		return err
	}
	msg, err := c.clipboard.CopyWithFallback(letter.Content)
	if err != nil {
		return err
	}
	c.printf("%s\n", msg)
	return nil
}

// handleFilters manages saved template filters
func (c *CLI) handleFilters(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		filters, err := c.service.ListSavedFilters()
		if err != nil {
			return err
		}
		if len(filters) == 0 {
			c.printf("No saved filters\n")
		}
		for _, f := range filters {
			c.printf("%-20s %s\n", f.Name, f)
		}
		return nil
	}

	sub, rest := args[0], args[1:]
	fs := parseFlags(rest)
	if len(fs.positional) == 0 {
		return errors.NewAppError(errors.ErrCodeMissingField, fmt.Sprintf("filters %s requires a name", sub))
	}
	name := fs.positional[0]

	switch sub {
	case "save":
		filter := models.SavedFilter{
			Name:            name,
			Industry:        fs.get("industry"),
			ExperienceLevel: fs.get("level"),
			Query:           fs.get("query", "q"),
		}
		if err := c.service.SaveFilter(filter); err != nil {
			return err
		}
		c.printf("Saved filter %q (%s)\n", name, filter)
	case "run":
		templates, err := c.service.ApplySavedFilter(ctx, name)
		if err != nil {
			return err
		}
		return c.formatTemplates(templates, fs.get("format", "f"))
	case "delete":
		if err := c.service.DeleteSavedFilter(name); err != nil {
			return err
		}
		c.printf("Deleted filter %q\n", name)
	default:
		return errors.InvalidCommandError("filters "+sub, "expected list, save, run or delete")
	}
	return nil
}

func (c *CLI) login(args []string) error {
	if len(args) == 0 {
		return errors.NewAppError(errors.ErrCodeMissingField, "login requires a user ID")
	}
	if err := c.service.SignIn(args[0]); err != nil {
		return err
	}
	c.printf("Signed in as %s\n", strings.TrimSpace(args[0]))
	return nil
}

func (c *CLI) logout() error {
	if err := c.service.SignOut(); err != nil {
		return err
	}
	c.printf("Signed out\n")
	return nil
}

func (c *CLI) whoami(ctx context.Context) error {
	user, ok := c.service.WhoAmI(ctx)
	if !ok {
		c.printf("Not signed in\n")
		return nil
	}
	c.printf("%s\n", user)
	return nil
}

// importResume extracts a resume record from a text file
func (c *CLI) importResume(ctx context.Context, args []string) error {
	fs := parseFlags(args)
	if len(fs.positional) == 0 {
		return errors.NewAppError(errors.ErrCodeMissingField, "import-resume requires a file")
	}
	record, err := c.service.ParseResumeFile(ctx, fs.positional[0])
	if err != nil {
		return err
	}
	if fs.get("format", "f") == "json" {
		return c.writeJSON(record)
	}

	c.printf("Name: %s\n", record.Name)
	c.printf("Email: %s\n", record.Email)
	c.printf("Phone: %s\n", record.Phone)
	if record.Location != "" {
		c.printf("Location: %s\n", record.Location)
	}
	if len(record.Skills) > 0 {
		c.printf("Skills: %s\n", strings.Join(record.Skills, ", "))
	}
	for _, exp := range record.Experience {
		c.printf("  - %s at %s\n", exp.Title, exp.Company)
	}
	return nil
}

// importTemplates imports a template pack from a git URL or directory
func (c *CLI) importTemplates(ctx context.Context, args []string) error {
	fs := parseFlags(args, "overwrite", "dry-run", "preview")
	if len(fs.positional) == 0 {
		return errors.NewAppError(errors.ErrCodeMissingField, "import-templates requires a repository URL or directory")
	}

	options := importer.TemplateImportOptions{
		Source:    fs.positional[0],
		Branch:    fs.get("branch"),
		TempDir:   fs.get("temp-dir"),
		Overwrite: fs.bools["overwrite"],
		DryRun:    fs.bools["dry-run"] || fs.bools["preview"],
	}
	if depth := fs.get("depth"); depth != "" {
		d, err := strconv.Atoi(depth)
		if err != nil {
			return errors.InvalidInputError("--depth must be a number")
		}
		options.Depth = d
	}

	result, err := c.service.ImportTemplates(ctx, options)
	if err != nil {
		return err
	}

	if options.DryRun {
		c.printf("Template Import Preview:\n")
	} else {
		c.printf("Template Import Complete:\n")
	}
	c.printf("Source: %s\n", result.Source)
	if result.Owner != "" {
		c.printf("Owner: %s\n", result.Owner)
	}
	c.printf("Templates: %d\n", len(result.Imported))
	for _, t := range result.Imported {
		c.printf("  - %s (%s)\n", t.JobTitle, t.ID)
	}
	if len(result.Skipped) > 0 {
		c.printf("Skipped (already present): %s\n", strings.Join(result.Skipped, ", "))
	}
	for _, w := range result.Warnings {
		c.printf("Warning: %s\n", w)
	}
	if len(result.Errors) > 0 {
		c.printf("\nErrors encountered: %d\n", len(result.Errors))
		for _, err := range result.Errors {
			c.printf("  - %v\n", err)
		}
	}
	if options.DryRun {
		c.printf("\nTo actually import these templates, run the same command without --dry-run\n")
	}
	return nil
}

// printUsage prints basic usage information
func (c *CLI) printUsage() error {
	c.printf(`Coverdraft CLI - Headless mode

Usage: coverdraft [command] [options]

Commands:
  init                       Create the library and add the starter templates
  templates, ls              List templates
  search <query>             Fuzzy-search templates
  template, show <id>        Show a template
  fields                     List the placeholder tokens
  render <id>                Fill a template with --set values
  letters                    List your saved letters
  letter <id>                Show a saved letter
  save <template-id>         Render a template and save it as a letter
  duplicate <id>             Copy a saved letter
  delete, rm <id>            Delete a saved letter
  export <id>                Export a saved letter to a file
  copy <id>                  Copy a saved letter to the clipboard
  filters                    Manage saved template filters
  login <user>               Sign in
  logout                     Sign out
  whoami                     Show the signed-in user
  import-resume <file>       Extract contact details from a resume
  import-templates <source>  Import templates from a git repository or directory
  help [command]             Show help

Use 'coverdraft help <command>' for more information about a command.
`)
	return nil
}

// printHelp prints detailed help for a command
func (c *CLI) printHelp(args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	switch args[0] {
	case "templates", "ls":
		c.printf(`List templates

Usage: coverdraft templates [options]

Options:
  --industry <name>  Only templates in this industry
  --level <name>     Only templates at this experience level
  --search <text>    Substring match on title, industry and preview
  --format, -f       Output format: table, json, ids

Examples:
  coverdraft templates --industry Technology
  coverdraft templates --level "Entry Level" --format table
`)
	case "render":
		c.printf(`Fill a template

Usage: coverdraft render <template-id> [options]

Options:
  --set, -s field=value  Set a field by name (fullName) or label ("Full Name")
  --format, -f json      Print the content, unfilled tokens and validation as JSON
  --copy                 Copy the result to the clipboard
  --export, -o <name>    Write the result to the export directory
  --png                  Export as PNG pages instead of text

Examples:
  coverdraft render software-engineer-senior --set fullName="Ada Lovelace"
  coverdraft render registered-nurse -s "Company Name=St. Mary's" --copy
`)
	case "save":
		c.printf(`Save a letter

Usage: coverdraft save <template-id> [options]

Options:
  --title, -t <title>    Letter title (defaults to "<job title> cover letter")
  --set, -s field=value  Set a field value

Requires a signed-in user (see 'coverdraft login').
`)
	case "export":
		c.printf(`Export a saved letter

Usage: coverdraft export <letter-id> [--png]

Text exports are written as <title>.txt. PNG exports are written one image
per page as <title>-page-NN.png.
`)
	case "filters":
		c.printf(`Manage saved template filters

Usage:
  coverdraft filters [list]
  coverdraft filters save <name> [--industry <name>] [--level <name>] [--query <text>]
  coverdraft filters run <name> [--format table|json|ids]
  coverdraft filters delete <name>
`)
	case "import-templates":
		c.printf(`Import templates

Usage: coverdraft import-templates <git-url|directory> [options]

Options:
  --branch <name>    Branch to clone
  --depth <n>        Clone depth (default 1)
  --temp-dir <path>  Where to clone
  --overwrite        Replace templates that already exist
  --dry-run          Show what would be imported

Each markdown file with template front matter becomes a template.
`)
	case "import-resume":
		c.printf(`Import a resume

Usage: coverdraft import-resume <file> [--format json]

Extracts name, email, phone, skills and experience with the configured AI
model. Requires COVERDRAFT_AI_API_KEY or ai.api_key in coverdraft.yaml.
`)
	case "login":
		c.printf(`Sign in

Usage: coverdraft login <user-id>

Letters are stored per user. The user is remembered until 'coverdraft logout'.
`)
	default:
		return errors.CommandNotFoundError(args[0])
	}
	return nil
}
