// Package page renders the HTML shells. The pages are deliberately
// thin: they carry the markup skeleton and hand the data flow to the
// client script, which talks to the JSON API.
package page

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

func write(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

func shell(title, body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>`+html.EscapeString(title)+`</title>
<link rel="stylesheet" href="/static/css/app.css">
</head>
<body>
<nav class="topnav">
  <a href="/">Calendar</a>
  <a href="/backlog">Backlog</a>
  <a href="/buckets">Buckets</a>
  <form method="post" action="/auth/logout" class="logout-form"><button type="submit">Log out</button></form>
</nav>
`+body+`
<script src="/static/js/app.js"></script>
</body>
</html>`)
	})
}

// LoginPage is the only page reachable without a session.
func LoginPage(sent bool) templ.Component {
	notice := ""
	if sent {
		notice = `<p class="notice">Check your email for a sign-in link. It expires in 30 minutes and only works in this browser.</p>`
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return write(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Sign in</title>
<link rel="stylesheet" href="/static/css/app.css">
</head>
<body class="login">
<main class="login-card">
<h1>Planner</h1>
`+notice+`
<form method="post" action="/login">
  <label for="email">Email</label>
  <input id="email" name="email" type="email" required autofocus>
  <input type="hidden" name="landing" value="/">
  <button type="submit">Email me a sign-in link</button>
</form>
</main>
</body>
</html>`)
	})
}

// CalendarPage is the landing page: week grid plus backlog rail.
func CalendarPage() templ.Component {
	return shell("Planner", `<main id="app" data-page="calendar">
<section id="calendar" class="calendar-grid" aria-label="Calendar"></section>
<aside id="backlog" class="task-rail" aria-label="Backlog"></aside>
</main>`)
}

// DayPage shows one day next to the backlog, for moving tasks across.
func DayPage(day string) templ.Component {
	d := html.EscapeString(day)
	return shell("Planner — "+day, fmt.Sprintf(`<main id="app" data-page="day" data-day="%s">
<section id="day" class="task-rail" aria-label="Day"><h2>%s</h2><div class="task-list"></div></section>
<aside id="backlog" class="task-rail" aria-label="Backlog"><h2>Backlog</h2><div class="task-list"></div></aside>
</main>`, d, d))
}

// BacklogPage lists every unscheduled task on its own.
func BacklogPage() templ.Component {
	return shell("Planner — Backlog", `<main id="app" data-page="backlog">
<section id="backlog" class="task-rail" aria-label="Backlog"><div class="task-list"></div></section>
</main>`)
}

// BucketPage shows one bucket next to the unassigned pool.
func BucketPage(slug string) templ.Component {
	s := html.EscapeString(slug)
	return shell("Planner — Buckets", fmt.Sprintf(`<main id="app" data-page="bucket" data-slug="%s">
<nav id="bucket-tabs" class="bucket-tabs" aria-label="Buckets"></nav>
<section id="bucket" class="task-rail" aria-label="Bucket"><div class="task-list"></div></section>
<aside id="unassigned" class="task-rail" aria-label="Unassigned"><h2>Unassigned</h2><div class="task-list"></div></aside>
</main>`, s))
}
