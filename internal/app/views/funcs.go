package views

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/diakonovmakar/yatube-final/internal/app/urls"
	"github.com/diakonovmakar/yatube-final/internal/pkg/helpers"
)

var namedPaths = map[string]string{
	"index":        urls.Index,
	"new_post":     urls.NewPost,
	"follow_index": urls.FollowIndex,
	"login":        urls.Login,
	"logout":       urls.Logout,
	"signup":       urls.Signup,
	"about_author": urls.AboutAuthor,
	"about_tech":   urls.AboutTech,
}

// FuncMap returns the helpers available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"path":        namedPath,
		"static":      func(name string) string { return urls.Static + name },
		"groupURL":    urls.Group,
		"profileURL":  urls.Profile,
		"postURL":     urls.Post,
		"postEditURL": urls.PostEdit,
		"commentURL":  urls.AddComment,
		"followURL":   urls.Follow,
		"unfollowURL": urls.Unfollow,
		"loginURL":    urls.LoginNext,
		"mediaURL":    mediaURL,
		"pubdate":     helpers.FormatPubDate,
		"linebreaks":  linebreaks,
	}
}

func namedPath(name string) (string, error) {
	p, ok := namedPaths[name]
	if !ok {
		return "", fmt.Errorf("unknown path %q", name)
	}
	return p, nil
}

func mediaURL(name *string) string {
	if name == nil {
		return ""
	}
	return urls.MediaFile(*name)
}

// linebreaks escapes s and turns newlines into <br>.
func linebreaks(s string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>\n"))
}
