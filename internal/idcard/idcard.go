// Package idcard validates and parses 18-digit national ID card numbers:
// mod-11 weighted checksum, embedded birth date (digits 6..13, yyyyMMdd) and
// parity-based gender digit.
package idcard

import (
	"fmt"
	"regexp"
	"time"

	"github.com/zhongxul/birthkeeper/internal/common"
	"github.com/zhongxul/birthkeeper/internal/models"
)

var (
	idPattern = regexp.MustCompile(`^\d{17}[\dXx]$`)
	weights   = [17]int{7, 9, 10, 5, 8, 4, 2, 1, 6, 3, 7, 9, 10, 5, 8, 4, 2}
	checkMap  = [11]byte{'1', '0', 'X', '9', '8', '7', '6', '5', '4', '3', '2'}
)

// Result is a successfully parsed ID card number.
type Result struct {
	BirthDate time.Time // date only, UTC midnight
	Gender    models.Gender
	Age       int
}

func IsFormatValid(id string) bool {
	return idPattern.MatchString(id)
}

func IsChecksumValid(id string) bool {
	if !IsFormatValid(id) {
		return false
	}
	sum := 0
	for i := 0; i < 17; i++ {
		sum += int(id[i]-'0') * weights[i]
	}
	expected := checkMap[sum%11]
	last := id[17]
	if last >= 'a' {
		last -= 'a' - 'A'
	}
	return expected == last
}

// ParseBirthDate extracts the embedded birth date. Format must already be
// valid; impossible dates (e.g. month 13) fail.
func ParseBirthDate(id string) (time.Time, error) {
	if !IsFormatValid(id) {
		return time.Time{}, fmt.Errorf("%w: bad format", common.ErrInvalidIDCard)
	}
	d, err := time.ParseInLocation("20060102", id[6:14], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad birth date", common.ErrInvalidIDCard)
	}
	return d, nil
}

// Parse validates the number end to end and derives birth date, gender and
// age as of today.
func Parse(id string, today time.Time) (Result, error) {
	if !IsFormatValid(id) {
		return Result{}, fmt.Errorf("%w: bad format", common.ErrInvalidIDCard)
	}
	if !IsChecksumValid(id) {
		return Result{}, fmt.Errorf("%w: checksum failed", common.ErrInvalidIDCard)
	}
	birth, err := ParseBirthDate(id)
	if err != nil {
		return Result{}, err
	}
	if birth.After(today) {
		return Result{}, fmt.Errorf("%w: birth date in the future", common.ErrInvalidIDCard)
	}

	gender := models.GenderFemale
	if (id[16]-'0')%2 == 1 {
		gender = models.GenderMale
	}

	return Result{BirthDate: birth, Gender: gender, Age: age(birth, today)}, nil
}

func age(birth, today time.Time) int {
	years := today.Year() - birth.Year()
	anniversary := birth.AddDate(years, 0, 0)
	if anniversary.After(today) {
		years--
	}
	return years
}
