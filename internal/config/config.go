package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

// Tab names every faculty spreadsheet is expected to contain, in display order.
// ClassTakenTab is evaluated against today's date rather than the generic
// has-any-data rule.
var RequiredTabs = []string{
	"Course Completion",
	"Class Taken",
	"Unit Test",
	"Internal 1",
	"Internal 2",
	"Model",
}

const ClassTakenTab = "Class Taken"

// Faculty is one entry of the faculty directory.
type Faculty struct {
	Name          string
	SpreadsheetID string
}

type Config struct {
	Addr    string
	DevMode bool

	JWTSecret         string
	AdminEmail        string
	AdminPassword     string
	AdminPasswordHash string

	// Raw service account JSON blob, as supplied to the Google Sheets client.
	Credentials         []byte
	ServiceAccountEmail string

	Faculty []Faculty
}

var spreadsheetURL = regexp.MustCompile(`^https://docs.google.com/spreadsheets/d/(.*?)(?:/.*)?$`)

// SpreadsheetID extracts the spreadsheet ID from a Google Sheets URL. A value
// that is not a URL is assumed to already be an ID and returned as-is.
func SpreadsheetID(v string) string {
	if match := spreadsheetURL.FindStringSubmatch(v); len(match) == 2 {
		return match[1]
	}

	return v
}

// Load reads configuration from the environment, optionally pre-loading a
// .env file. Missing or malformed required values are fatal.
func Load(envfile string) (*Config, error) {
	if envfile != "" {
		if err := godotenv.Load(envfile); err != nil {
			return nil, fmt.Errorf("unable to load env file %s (%v)", envfile, err)
		}
	} else {
		godotenv.Load()
	}

	cfg := Config{
		Addr: ":8080",
	}

	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}

	cfg.DevMode = os.Getenv("DEV") == "true"

	// ... required values
	if cfg.JWTSecret = os.Getenv("JWT_SECRET"); cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.AdminEmail = os.Getenv("ADMIN_EMAIL"); cfg.AdminEmail == "" {
		return nil, fmt.Errorf("ADMIN_EMAIL is required")
	}

	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	cfg.AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		return nil, fmt.Errorf("one of ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}

	credentials := os.Getenv("GOOGLE_SHEETS_CREDENTIALS")
	if credentials == "" {
		return nil, fmt.Errorf("GOOGLE_SHEETS_CREDENTIALS is required")
	}

	var account struct {
		ClientEmail string `json:"client_email"`
	}

	if err := json.Unmarshal([]byte(credentials), &account); err != nil {
		return nil, fmt.Errorf("GOOGLE_SHEETS_CREDENTIALS is not valid JSON (%v)", err)
	}

	cfg.Credentials = []byte(credentials)
	cfg.ServiceAccountEmail = account.ClientEmail

	// ... faculty directory
	directory := os.Getenv("FACULTY_SHEETS")
	if directory == "" {
		return nil, fmt.Errorf("FACULTY_SHEETS is required")
	}

	faculty, err := parseDirectory(directory)
	if err != nil {
		return nil, err
	}

	cfg.Faculty = faculty

	return &cfg, nil
}

// parseDirectory parses the FACULTY_SHEETS value: a JSON object mapping
// faculty display name to spreadsheet ID or URL. json.Unmarshal into a map
// would lose the configured order, so the object is decoded token-wise.
func parseDirectory(v string) ([]Faculty, error) {
	decoder := json.NewDecoder(strings.NewReader(v))

	if token, err := decoder.Token(); err != nil {
		return nil, fmt.Errorf("invalid FACULTY_SHEETS (%v)", err)
	} else if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("invalid FACULTY_SHEETS - expected a JSON object")
	}

	faculty := []Faculty{}
	seen := map[string]bool{}

	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid FACULTY_SHEETS (%v)", err)
		}

		name := strings.TrimSpace(token.(string))

		var sheet string
		if err := decoder.Decode(&sheet); err != nil {
			return nil, fmt.Errorf("invalid FACULTY_SHEETS entry for '%s' (%v)", name, err)
		}

		if name == "" {
			return nil, fmt.Errorf("invalid FACULTY_SHEETS - blank faculty name")
		}

		if seen[name] {
			return nil, fmt.Errorf("invalid FACULTY_SHEETS - duplicate faculty name '%s'", name)
		}

		id := SpreadsheetID(strings.TrimSpace(sheet))
		if id == "" {
			return nil, fmt.Errorf("invalid FACULTY_SHEETS - missing spreadsheet ID for '%s'", name)
		}

		seen[name] = true
		faculty = append(faculty, Faculty{Name: name, SpreadsheetID: id})
	}

	if len(faculty) == 0 {
		return nil, fmt.Errorf("invalid FACULTY_SHEETS - no faculty configured")
	}

	return faculty, nil
}
