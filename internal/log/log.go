package log

import (
	"io"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var std = newLogger(os.Stdout)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "ts",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "action",
		},
	})
	return l
}

// Logger exposes the process logger for libraries that take a *logrus.Logger.
func Logger() *logrus.Logger { return std }

func SetOutput(w io.Writer) { std.SetOutput(w) }

func Writer() io.Writer { return std.Out }

// SetLevel accepts logrus level names; unknown names leave the level unchanged.
func SetLevel(name string) {
	if lvl, err := logrus.ParseLevel(name); err == nil {
		std.SetLevel(lvl)
	}
}

func entry(c *fiber.Ctx, err error, fields map[string]any) *logrus.Entry {
	e := logrus.NewEntry(std)
	if c != nil {
		e = e.WithFields(logrus.Fields{
			"ip":     c.IP(),
			"method": c.Method(),
			"path":   c.Path(),
			"status": c.Response().StatusCode(),
		})
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			e = e.WithField("req_id", rid)
		}
	}
	if err != nil {
		e = e.WithField("err", err.Error())
	}
	if len(fields) > 0 {
		e = e.WithField("fields", fields)
	}
	return e
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, nil, fields).Info(action)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	entry(c, nil, fields).WithField("audit", true).Info(action)
}

func Warn(c *fiber.Ctx, action string, err error, fields map[string]any) {
	entry(c, err, fields).Warn(action)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	entry(c, err, fields).Error(action)
}
