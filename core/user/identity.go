package user

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

var studentIDRegex = regexp.MustCompile(`^S(\d+)$`)

// Authenticate returns a copy of the stored user when `pwd` matches exactly.
func Authenticate(users map[string]*User, username, pwd string) (User, error) {
	usr, ok := users[username]
	if !ok || !usr.CheckPassword(pwd) {
		return User{}, ErrAuthFailed
	}
	found := *usr
	found.Username = username
	return found, nil
}

// FormatStudentID formats n as S001, S002, .. S999, S1000, ..
func FormatStudentID(n int) string {
	return fmt.Sprintf("S%03d", n)
}

// ParseStudentID extracts the number of an S<digits> id.
func ParseStudentID(id string) (int, bool) {
	m := studentIDRegex.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func usedStudentIDs(users map[string]*User) map[int]bool {
	used := make(map[int]bool)
	for _, usr := range users {
		if !usr.IsStudent() {
			continue
		}
		if n, ok := ParseStudentID(usr.StudentID); ok {
			used[n] = true
		}
	}
	return used
}

// NextStudentID returns the smallest positive id not used by any student.
// Freed numbers are reused before a new maximum is handed out.
func NextStudentID(users map[string]*User) string {
	used := usedStudentIDs(users)
	n := 1
	for used[n] {
		n++
	}
	return FormatStudentID(n)
}

// BackfillIDs assigns ids to students that have none, in username order,
// counting up from the current maximum. It returns the usernames it updated.
func BackfillIDs(users map[string]*User) []string {
	var max int
	for n := range usedStudentIDs(users) {
		if n > max {
			max = n
		}
	}

	unames := make([]string, 0, len(users))
	for uname, usr := range users {
		if usr.IsStudent() && usr.StudentID == "" {
			unames = append(unames, uname)
		}
	}
	sort.Strings(unames)

	for _, uname := range unames {
		max++
		users[uname].StudentID = FormatStudentID(max)
	}
	return unames
}
