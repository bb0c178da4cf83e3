package pattern

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"haptics/pkg/errors"
)

// Parser 将图案文件解析为 Pattern
type Parser interface {
	Parse(path string) (*Pattern, error)
}

// ParserFunc 让普通函数满足 Parser
type ParserFunc func(path string) (*Pattern, error)

func (f ParserFunc) Parse(path string) (*Pattern, error) { return f(path) }

// familyFactory 按扩展名登记的图案解析器
type familyFactory struct {
	parsers map[string]Parser
	mutex   sync.RWMutex
}

var defaultFactory = &familyFactory{parsers: make(map[string]Parser)}

func init() {
	RegisterFamily(".tact", JSONFileParser{Family: "tact"})
	RegisterFamily(".tactosy", JSONFileParser{Family: "tactosy"})
}

// RegisterFamily 为扩展名登记解析器，重复登记时覆盖
func RegisterFamily(ext string, parser Parser) {
	defaultFactory.mutex.Lock()
	defer defaultFactory.mutex.Unlock()
	defaultFactory.parsers[normalizeExt(ext)] = parser
}

// ParserFor 根据文件扩展名选择解析器
func ParserFor(path string) (Parser, error) {
	defaultFactory.mutex.RLock()
	defer defaultFactory.mutex.RUnlock()

	ext := normalizeExt(filepath.Ext(path))
	parser, ok := defaultFactory.parsers[ext]
	if !ok {
		return nil, errors.WrapMissing(
			fmt.Errorf("%w: %s", errors.ErrUnknownFamily, ext), "pattern", "ParserFor")
	}
	return parser, nil
}

// GetSupportedFamilies 已登记的扩展名列表
func GetSupportedFamilies() []string {
	defaultFactory.mutex.RLock()
	defer defaultFactory.mutex.RUnlock()

	families := make([]string, 0, len(defaultFactory.parsers))
	for ext := range defaultFactory.parsers {
		families = append(families, ext)
	}
	sort.Strings(families)
	return families
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// JSONFileParser 读取 JSON 格式的图案文件，取其 project 成员
type JSONFileParser struct {
	Family string
}

func (p JSONFileParser) Parse(path string) (*Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapMissing(
				fmt.Errorf("%w: %s", errors.ErrPatternNotFound, path), "pattern", "Parse")
		}
		return nil, errors.WrapMissing(err, "pattern", "Parse")
	}

	var document struct {
		Project json.RawMessage `json:"project"`
	}
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, errors.WrapParse(fmt.Errorf("%w: %s: %v", errors.ErrParsingFailed, path, err), "pattern", "Parse")
	}
	if len(document.Project) == 0 || string(document.Project) == "null" {
		return nil, errors.WrapParse(
			fmt.Errorf("%w: %s 缺少 project", errors.ErrParsingFailed, path), "pattern", "Parse")
	}

	return &Pattern{
		Key:     KeyFromFilename(filepath.Base(path)),
		Family:  p.Family,
		Path:    path,
		Project: document.Project,
	}, nil
}

// ParseFile 使用扩展名对应的解析器解析文件
func ParseFile(path string) (*Pattern, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapMissing(
				fmt.Errorf("%w: %s", errors.ErrPatternNotFound, path), "pattern", "ParseFile")
		}
		return nil, errors.WrapMissing(err, "pattern", "ParseFile")
	}

	parser, err := ParserFor(path)
	if err != nil {
		return nil, err
	}
	return parser.Parse(path)
}
