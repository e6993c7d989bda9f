package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config 命令行工具的配置结构体
type Config struct {
	JVM     JVMConfig     `mapstructure:"jvm"`
	Extract ExtractConfig `mapstructure:"extract"`
	OCR     OCRConfig     `mapstructure:"ocr"`
	Log     LogConfig     `mapstructure:"log"`
}

// JVMConfig 嵌入式运行时配置
type JVMConfig struct {
	LibPath   string `mapstructure:"lib_path"`  // libjvm 路径，空则自动探测
	Classpath string `mapstructure:"classpath"` // tika-native 构件的 classpath
}

// ExtractConfig 提取默认值配置
type ExtractConfig struct {
	MaxLength       int    `mapstructure:"max_length"`       // 返回文本最大长度，负值不限制
	Encoding        string `mapstructure:"encoding"`         // 流式结果字符集
	XMLOutput       bool   `mapstructure:"xml_output"`       // 是否输出 XHTML
	ExtractEmbedded bool   `mapstructure:"extract_embedded"` // 是否解析嵌套文档
	PdfOcrStrategy  string `mapstructure:"pdf_ocr_strategy"` // PDF OCR 策略
}

// OCRConfig Tesseract OCR 配置
type OCRConfig struct {
	Language       string `mapstructure:"language"`        // 语言包，如 eng 或 eng+chi_sim
	Density        int    `mapstructure:"density"`         // 渲染 DPI
	Depth          int    `mapstructure:"depth"`           // 渲染色深
	TimeoutSeconds int    `mapstructure:"timeout_seconds"` // 单次 tesseract 调用超时
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"` // 日志级别 (debug/info/warn/error)
}

// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	var config Config

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	} else {
		v.SetConfigName("extractous")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/extractous")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	}

	// 支持环境变量覆盖，如 EXTRACTOUS_JVM_CLASSPATH
	v.SetEnvPrefix("extractous")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	return &config, nil
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 运行时默认配置：留空走自动探测与环境变量
	v.SetDefault("jvm.lib_path", "")
	v.SetDefault("jvm.classpath", "")

	// 提取默认配置
	v.SetDefault("extract.max_length", -1)
	v.SetDefault("extract.encoding", "UTF-8")
	v.SetDefault("extract.xml_output", false)
	v.SetDefault("extract.extract_embedded", true)
	v.SetDefault("extract.pdf_ocr_strategy", "AUTO")

	// OCR默认配置
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.density", 300)
	v.SetDefault("ocr.depth", 4)
	v.SetDefault("ocr.timeout_seconds", 120)

	// 日志默认配置
	v.SetDefault("log.level", "info")
}
