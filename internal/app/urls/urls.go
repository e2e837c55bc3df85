// Package urls builds the paths of every named route. Handlers use it for
// redirects and templates use it for links.
package urls

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	Index       = "/"
	NewPost     = "/new/"
	FollowIndex = "/follow/"
	Login       = "/auth/login/"
	Logout      = "/auth/logout/"
	Signup      = "/auth/signup/"
	AboutAuthor = "/about/author/"
	AboutTech   = "/about/tech/"
	Static      = "/static/"
	Media       = "/media/"
)

func Group(slug string) string {
	return "/group/" + url.PathEscape(slug) + "/"
}

func Profile(username string) string {
	return "/" + url.PathEscape(username) + "/"
}

func Post(username string, id int64) string {
	return Profile(username) + strconv.FormatInt(id, 10) + "/"
}

func PostEdit(username string, id int64) string {
	return Post(username, id) + "edit/"
}

func AddComment(username string, id int64) string {
	return Post(username, id) + "comment/"
}

func Follow(username string) string {
	return Profile(username) + "follow/"
}

func Unfollow(username string) string {
	return Profile(username) + "unfollow/"
}

// LoginNext is the login page that returns to next afterwards.
func LoginNext(next string) string {
	return Login + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// MediaFile is the public URL of a stored upload such as "posts/cat.gif".
func MediaFile(name string) string {
	return Media + strings.TrimPrefix(name, "/")
}

// IsLocal accepts only same-site absolute paths as redirect targets.
func IsLocal(target string) bool {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	u, err := url.Parse(target)
	return err == nil && u.Scheme == "" && u.Host == ""
}
