package repository

import (
	"github.com/iliyamo/social-feed/internal/model"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// personCols lists the public user columns under a table alias.  The
// password hash is only ever read by the UserRepo lookups.
func personCols(alias string) string {
	return alias + ".id, " + alias + ".first_name, " + alias + ".last_name, " +
		alias + ".username, " + alias + ".role, " + alias + ".created_at"
}

func personDest(u *model.User) []any {
	return []any{&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.Role, &u.CreatedAt}
}

func postCols(alias string) string {
	return alias + ".id, " + alias + ".user_id, " + alias + ".title, " + alias + ".content, " + alias + ".date_created"
}

func postDest(p *model.Post) []any {
	return []any{&p.ID, &p.UserID, &p.Title, &p.Content, &p.CreatedAt}
}

func commentCols(alias string) string {
	return alias + ".id, " + alias + ".user_id, " + alias + ".post_id, " + alias + ".message, " + alias + ".date_created"
}

func commentDest(c *model.Comment) []any {
	return []any{&c.ID, &c.UserID, &c.PostID, &c.Message, &c.CreatedAt}
}

func joinDest(groups ...[]any) []any {
	var out []any
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
