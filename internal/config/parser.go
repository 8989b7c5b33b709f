package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mwangiiharun/hermes/internal/logging"
	"github.com/mwangiiharun/hermes/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
	logger   logging.Logger
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, logger: logging.Noop()}
}

// WithLogger sets the logger used for parse diagnostics.
func (p *Parser) WithLogger(logger logging.Logger) *Parser {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// ParseString evaluates luaCode and merges the "hermes" table over the
// defaults.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	if len(luaCode) > MaxConfigSize {
		return nil, &ParseError{
			Message: "config too large",
			Detail:  fmt.Sprintf("%d bytes, maximum is %d", len(luaCode), MaxConfigSize),
		}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultParseTimeout)
		defer cancel()
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	start := time.Now()
	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &ParseError{Message: "config evaluation timed out", Detail: ctxErr.Error()}
		}
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}
	p.logger.Debug("evaluated config", "duration", time.Since(start))

	cfg, err := extractConfig(L)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global "hermes" table over Default().
func extractConfig(L *lua.LState) (*Config, error) {
	root := L.GetGlobal(luaGlobalHermes)
	if root.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: "missing or invalid 'hermes' table",
			Detail:  fmt.Sprintf("expected table, got %s", root.Type()),
		}
	}
	table := root.(*lua.LTable)
	cfg := Default()

	if v := table.RawGetString(luaFieldSpeedtest); v.Type() != lua.LTNil {
		t, ok := v.(*lua.LTable)
		if !ok {
			return nil, typeError(luaFieldSpeedtest, "table", v)
		}
		if err := extractSpeedtest(t, &cfg.Speedtest); err != nil {
			return nil, err
		}
	}

	if v := table.RawGetString(luaFieldDownload); v.Type() != lua.LTNil {
		t, ok := v.(*lua.LTable)
		if !ok {
			return nil, typeError(luaFieldDownload, "table", v)
		}
		if err := extractDownload(t, &cfg.Download); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func extractSpeedtest(t *lua.LTable, s *Speedtest) error {
	fields := []struct {
		field string
		dest  *string
	}{
		{luaFieldName, &s.Name},
		{luaFieldVersion, &s.Version},
		{luaFieldTap, &s.Tap},
		{luaFieldPackage, &s.Package},
		{luaFieldPM, &s.PackageManager},
		{luaFieldURL, &s.URL},
		{luaFieldPage, &s.DownloadPage},
		{luaFieldSigURL, &s.SignatureURL},
		{luaFieldKeyring, &s.Keyring},
		{luaFieldExtractor, &s.Extractor},
		{luaFieldInstallDir, &s.InstallDir},
	}
	for _, f := range fields {
		if err := getString(t, luaFieldSpeedtest+"."+f.field, f.dest); err != nil {
			return err
		}
	}

	if v := t.RawGetString(luaFieldSHA256); v.Type() != lua.LTNil {
		sums, ok := v.(*lua.LTable)
		if !ok {
			return typeError(luaFieldSpeedtest+"."+luaFieldSHA256, "table", v)
		}
		parsed, err := extractChecksums(sums)
		if err != nil {
			return err
		}
		s.SHA256 = parsed
	}

	if v := t.RawGetString(luaFieldStrategies); v.Type() != lua.LTNil {
		list, ok := v.(*lua.LTable)
		if !ok {
			return typeError(luaFieldSpeedtest+"."+luaFieldStrategies, "table", v)
		}
		strategies, err := extractStringList(list, luaFieldSpeedtest+"."+luaFieldStrategies)
		if err != nil {
			return err
		}
		s.Strategies = strategies
	}

	return nil
}

// extractChecksums accepts any architecture spelling ParseArch knows.
func extractChecksums(t *lua.LTable) (map[platform.Arch]string, error) {
	sums := make(map[platform.Arch]string)
	var err error
	t.ForEach(func(key, value lua.LValue) {
		if err != nil {
			return
		}
		field := luaFieldSpeedtest + "." + luaFieldSHA256 + "." + key.String()
		if value.Type() != lua.LTString {
			err = typeError(field, "string", value)
			return
		}
		arch, perr := platform.ParseArch(key.String())
		if perr != nil {
			err = &ValidationError{Field: field, Message: perr.Error()}
			return
		}
		sums[arch] = strings.ToLower(strings.TrimSpace(value.String()))
	})
	return sums, err
}

// extractStringList reads the array part of t. Nil holes left by platform
// conditionals are skipped; any other non-string value is an error.
func extractStringList(t *lua.LTable, field string) ([]string, error) {
	var out []string
	for i := 1; i <= t.MaxN(); i++ {
		v := t.RawGetInt(i)
		switch v.Type() {
		case lua.LTNil:
			continue
		case lua.LTString:
			out = append(out, v.String())
		default:
			return nil, typeError(fmt.Sprintf("%s[%d]", field, i), "string", v)
		}
	}
	return out, nil
}

func extractDownload(t *lua.LTable, d *Download) error {
	if v := t.RawGetString(luaFieldTimeout); v.Type() != lua.LTNil {
		n, ok := v.(lua.LNumber)
		if !ok {
			return typeError(luaFieldDownload+"."+luaFieldTimeout, "number of seconds", v)
		}
		d.Timeout = time.Duration(float64(n) * float64(time.Second))
	}

	if v := t.RawGetString(luaFieldRetries); v.Type() != lua.LTNil {
		n, ok := v.(lua.LNumber)
		if !ok {
			return typeError(luaFieldDownload+"."+luaFieldRetries, "number", v)
		}
		d.Retries = int(n)
	}

	if v := t.RawGetString(luaFieldProgressBar); v.Type() != lua.LTNil {
		b, ok := v.(lua.LBool)
		if !ok {
			return typeError(luaFieldDownload+"."+luaFieldProgressBar, "boolean", v)
		}
		d.Progress = bool(b)
	}

	return nil
}

func getString(t *lua.LTable, field string, dest *string) error {
	key := field[strings.LastIndex(field, ".")+1:]
	v := t.RawGetString(key)
	if v.Type() == lua.LTNil {
		return nil
	}
	s, ok := v.(lua.LString)
	if !ok {
		return typeError(field, "string", v)
	}
	*dest = string(s)
	return nil
}

func typeError(field, want string, got lua.LValue) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf("expected %s, got %s", want, got.Type())}
}

// FormatError formats a config error for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
