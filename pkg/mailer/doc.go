// Package mailer renders markdown email templates and hands the result to
// a delivery provider.
//
// Templates carry YAML frontmatter for metadata such as the subject. The
// body is executed as a text/template, converted to HTML by goldmark and
// wrapped in an HTML layout. The executed markdown doubles as the plain
// text part.
//
// The built-in templates live in templates/ and are embedded; callers may
// pass their own fs.FS to [NewRenderer].
package mailer
