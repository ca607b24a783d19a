package bulkimport

import domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"

type csvField []string

// Aliases are compared after domain.NormalizeKey, so "Email", "email" and
// "E-Mail" all hit the same column.
var (
	fieldFullName    = csvField{"fullname", "name", "candidatename"}
	fieldEmail       = csvField{"email", "emailid", "emailaddress"}
	fieldMobile      = csvField{"mobile", "mobilenumber", "mobileno", "phone", "phonenumber"}
	fieldCountryCode = csvField{"countrycode", "dialcode"}
	fieldGender      = csvField{"gender", "sex"}
	fieldProgram     = csvField{"programid", "programcode", "program"}
	fieldGroupName   = csvField{"groupname", "group"}
	fieldPassword    = csvField{"password"}
	fieldExamStart   = csvField{"examstart", "examstartdate", "validfrom"}
	fieldExamEnd     = csvField{"examend", "examenddate", "validto"}
)

type rowFields struct {
	byKey map[string]string
}

func newRowFields(raw domain.RawFields) rowFields {
	byKey := make(map[string]string, len(raw))
	for name, value := range raw {
		key := domain.NormalizeKey(name)
		if existing, ok := byKey[key]; ok && existing != "" {
			continue
		}
		byKey[key] = value
	}
	return rowFields{byKey: byKey}
}

func (f rowFields) get(field csvField) string {
	for _, alias := range field {
		if value := f.byKey[alias]; value != "" {
			return value
		}
	}
	return ""
}
