package bulkimport

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
)

const defaultCountryCode = "+91"

var (
	countryCodePattern = regexp.MustCompile(`^\+\d{1,4}$`)
	validate           = validator.New()
)

type ValidatorConfig struct {
	DefaultCountryCode string
	Location           *time.Location
	Now                func() time.Time
}

// RowValidator checks the rows of one file in order. It keeps the in-file
// duplicate sets, so a validator must not be reused across jobs.
type RowValidator struct {
	tables      *ReferenceTables
	cfg         ValidatorConfig
	now         time.Time
	seenEmails  map[string]struct{}
	seenMobiles map[string]struct{}
}

func NewRowValidator(tables *ReferenceTables, cfg ValidatorConfig) *RowValidator {
	if cfg.DefaultCountryCode == "" {
		cfg.DefaultCountryCode = defaultCountryCode
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &RowValidator{
		tables:      tables,
		cfg:         cfg,
		now:         cfg.Now(),
		seenEmails:  make(map[string]struct{}),
		seenMobiles: make(map[string]struct{}),
	}
}

// Validate turns a parsed record into an ImportRow with status READY,
// NEEDS_CONFIRMATION or INVALID.
func (v *RowValidator) Validate(parsed ParsedRow) domain.ImportRow {
	row := domain.ImportRow{
		RowIndex: parsed.Index,
		RawData:  parsed.Fields,
		Status:   domain.RowStatusPending,
	}

	if reason := v.checkRules(parsed.Fields, &row.NormalizedData); reason != "" {
		row.MarkInvalid(reason)
		return row
	}

	groupName := row.NormalizedData.GroupName
	if groupName == "" {
		row.MarkInvalid("Group Name is required")
		return row
	}

	row.Status = domain.RowStatusReady
	if match, ok := MatchGroup(groupName, v.tables); ok {
		groupID := match.Group.ID
		score := match.Score
		row.MatchedGroupID = &groupID
		row.GroupMatchScore = &score
		if !match.Exact {
			row.Status = domain.RowStatusNeedsConfirmation
		}
	}

	return row
}

func (v *RowValidator) checkRules(raw domain.RawFields, out *domain.NormalizedRow) string {
	fields := newRowFields(raw)

	email := fields.get(fieldEmail)
	mobile := domain.NormalizeMobile(fields.get(fieldMobile))
	out.FullName = fields.get(fieldFullName)
	out.Email = email
	out.Mobile = mobile
	out.GroupName = fields.get(fieldGroupName)
	out.Password = fields.get(fieldPassword)

	if reason := v.checkInFileDuplicate(email, mobile); reason != "" {
		return reason
	}

	if email == "" {
		return "Email is required"
	}
	if mobile == "" {
		return "Mobile is required"
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return fmt.Sprintf("Email '%s' invalid.", email)
	}

	countryCode := fields.get(fieldCountryCode)
	if countryCode == "" {
		countryCode = v.cfg.DefaultCountryCode
	}
	if !strings.HasPrefix(countryCode, "+") {
		countryCode = "+" + countryCode
	}
	if !countryCodePattern.MatchString(countryCode) {
		return fmt.Sprintf("Country Code '%s' invalid.", countryCode)
	}
	out.CountryCode = countryCode

	gender := domain.Gender(strings.ToUpper(fields.get(fieldGender)))
	if gender == "" {
		return "Gender is required"
	}
	if !gender.Valid() {
		return fmt.Sprintf("Gender '%s' invalid.", gender)
	}
	out.Gender = gender

	programRef := fields.get(fieldProgram)
	if programRef == "" {
		return "Program is required"
	}
	program, ok := v.tables.ResolveProgram(programRef)
	if !ok {
		return fmt.Sprintf("Program '%s' invalid. Must be 'Employee' or 'CXO General'.", programRef)
	}
	out.ProgramRef = programRef
	out.ProgramID = program.ID

	startRaw, endRaw := fields.get(fieldExamStart), fields.get(fieldExamEnd)
	if startRaw == "" || endRaw == "" {
		return "Exam Start/End dates are required"
	}
	start, startErr := parseExamTime(startRaw, v.cfg.Location)
	end, endErr := parseExamTime(endRaw, v.cfg.Location)
	if startErr != nil || endErr != nil {
		return "Invalid Date Format."
	}
	if start.Before(v.now) {
		return "Exam Start Date > Current Time required."
	}
	if !end.After(start) {
		return "Exam End Date > Start Date required."
	}
	out.ExamStart = &start
	out.ExamEnd = &end

	if existing, ok := v.tables.UserByEmail(email); ok {
		if domain.NormalizeMobile(existing.Mobile) != mobile {
			return fmt.Sprintf("Email %s exists with different phone no", email)
		}
		id := existing.ID
		out.ExistingUserID = &id
	}
	if existing, ok := v.tables.UserByMobile(mobile); ok {
		if domain.NormalizeEmail(existing.Email) != domain.NormalizeEmail(email) {
			return fmt.Sprintf("Mobile no %s exists with different email id", mobile)
		}
		id := existing.ID
		out.ExistingUserID = &id
	}

	return ""
}

// checkInFileDuplicate flags a repeat of an earlier row's email or mobile and
// records this row's values for the rows that follow.
func (v *RowValidator) checkInFileDuplicate(email, mobile string) string {
	emailKey := domain.NormalizeEmail(email)

	var reason string
	if emailKey != "" {
		if _, seen := v.seenEmails[emailKey]; seen {
			reason = fmt.Sprintf("Duplicate Email in file: %s", email)
		}
	}
	if reason == "" && mobile != "" {
		if _, seen := v.seenMobiles[mobile]; seen {
			reason = fmt.Sprintf("Duplicate Mobile in file: %s", mobile)
		}
	}

	if emailKey != "" {
		v.seenEmails[emailKey] = struct{}{}
	}
	if mobile != "" {
		v.seenMobiles[mobile] = struct{}{}
	}
	return reason
}
