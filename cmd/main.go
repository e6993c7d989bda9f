package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thc1102/extractous"
	cliconfig "github.com/thc1102/extractous/config"
)

// 命令行覆盖项，零值表示未指定、回退到配置文件
type cliFlags struct {
	configFile string
	logLevel   string
	output     string
	maxLength  int
	encoding   string
	xmlOutput  bool
	embedded   bool
	recursive  bool
	fromURL    bool
	language   string
}

var (
	flags  cliFlags
	logger *logrus.Logger
)

// version 由构建时 -ldflags "-X main.version=..." 注入
var version = "dev"

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "extractous",
		Short:         "Extract text and metadata from documents",
		Long:          "extractous extracts text and metadata from documents (PDF, Office formats, archives, images via OCR) using an embedded Apache Tika engine.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "Path to config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug/info/warn/error)")

	extract := &cobra.Command{
		Use:   "extract <file-or-url>",
		Short: "Extract text from a file or URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}
	extract.Flags().StringVarP(&flags.output, "output", "o", "", "Write extracted text to file instead of stdout")
	extract.Flags().IntVar(&flags.maxLength, "max-length", -1, "Maximum length of extracted text, negative for unbounded")
	extract.Flags().StringVar(&flags.encoding, "encoding", "", "Stream charset (UTF-8/US-ASCII/UTF-16BE)")
	extract.Flags().BoolVar(&flags.xmlOutput, "xml", false, "Emit XHTML instead of plain text")
	extract.Flags().BoolVar(&flags.embedded, "embedded", true, "Parse embedded documents into the output")
	extract.Flags().BoolVar(&flags.recursive, "recursive", false, "Emit each embedded document separately")
	extract.Flags().BoolVar(&flags.fromURL, "url", false, "Treat the argument as a URL")
	extract.Flags().StringVar(&flags.language, "ocr-language", "", "Tesseract language pack, e.g. eng or eng+chi_sim")

	detect := &cobra.Command{
		Use:   "detect <file>",
		Short: "Detect the mime type of a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runDetect,
	}

	jvm := &cobra.Command{
		Use:   "jvm",
		Short: "Inspect the embedded runtime",
	}
	jvm.AddCommand(&cobra.Command{
		Use:   "mem",
		Short: "Print runtime memory usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(); err != nil {
				return err
			}
			status, err := extractous.JVMMemoryUsage()
			if err != nil {
				return err
			}
			fmt.Println(status)
			return nil
		},
	})
	jvm.AddCommand(&cobra.Command{
		Use:   "gc",
		Short: "Trigger a runtime garbage collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(); err != nil {
				return err
			}
			status, err := extractous.TriggerJVMGC()
			if err != nil {
				return err
			}
			fmt.Println(status)
			return nil
		},
	})

	root.AddCommand(extract, detect, jvm, &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("extractous " + version)
		},
	})
	return root
}

// setup 加载配置、初始化日志并把运行时参数导出给嵌入式运行时。
func setup() (*cliconfig.Config, error) {
	cfg, err := cliconfig.Load(flags.configFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	logger = setupLogger(level)

	// 运行时定位参数经由环境变量传递，首次提取时生效
	if cfg.JVM.LibPath != "" {
		os.Setenv("EXTRACTOUS_JVM_LIB", cfg.JVM.LibPath)
	}
	if cfg.JVM.Classpath != "" {
		os.Setenv("EXTRACTOUS_CLASSPATH", cfg.JVM.Classpath)
	}
	return cfg, nil
}

// setupLogger 设置日志系统
func setupLogger(level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	switch level {
	case "debug":
		l.SetLevel(logrus.DebugLevel)
	case "info":
		l.SetLevel(logrus.InfoLevel)
	case "warn":
		l.SetLevel(logrus.WarnLevel)
	case "error":
		l.SetLevel(logrus.ErrorLevel)
	default:
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

// buildExtractor 以配置文件为基底、命令行参数为覆盖组装提取器
func buildExtractor(cmd *cobra.Command, cfg *cliconfig.Config) (extractous.Extractor, error) {
	e := extractous.NewExtractor()

	maxLength := cfg.Extract.MaxLength
	if cmd.Flags().Changed("max-length") {
		maxLength = flags.maxLength
	}
	e = e.SetExtractStringMaxLength(maxLength)

	encName := cfg.Extract.Encoding
	if flags.encoding != "" {
		encName = flags.encoding
	}
	enc, ok := extractous.ParseCharSet(encName)
	if !ok {
		return e, fmt.Errorf("unknown encoding %q", encName)
	}
	e = e.SetEncoding(enc)

	xml := cfg.Extract.XMLOutput
	if cmd.Flags().Changed("xml") {
		xml = flags.xmlOutput
	}
	e = e.SetXMLOutput(xml)

	embedded := cfg.Extract.ExtractEmbedded
	if cmd.Flags().Changed("embedded") {
		embedded = flags.embedded
	}
	e = e.SetExtractEmbedded(embedded)

	pdf := extractous.NewPdfParserConfig().
		SetOcrStrategy(extractous.PdfOcrStrategy(cfg.Extract.PdfOcrStrategy))
	e = e.SetPdfConfig(pdf)

	language := cfg.OCR.Language
	if flags.language != "" {
		language = flags.language
	}
	ocr := extractous.NewTesseractOcrConfig().
		SetLanguage(language).
		SetDensity(cfg.OCR.Density).
		SetDepth(cfg.OCR.Depth).
		SetTimeoutSeconds(cfg.OCR.TimeoutSeconds)
	e = e.SetOcrConfig(ocr)

	return e, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	extractor, err := buildExtractor(cmd, cfg)
	if err != nil {
		return err
	}

	out := os.Stdout
	if flags.output != "" {
		f, err := os.Create(flags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %v", err)
		}
		defer f.Close()
		out = f
	}

	src := args[0]
	if flags.recursive {
		return extractRecursive(extractor, src, out)
	}
	return extractStream(extractor, src, out)
}

func extractStream(extractor extractous.Extractor, src string, out *os.File) error {
	var (
		reader   *extractous.StreamReader
		metadata extractous.Metadata
		err      error
	)
	if flags.fromURL {
		reader, metadata, err = extractor.ExtractURL(src)
	} else {
		reader, metadata, err = extractor.ExtractFile(src)
	}
	if err != nil {
		return err
	}
	defer reader.Close()

	logger.WithFields(logrus.Fields{
		"source":       src,
		"content_type": firstValue(metadata, "Content-Type"),
	}).Debug("extraction started")

	n, err := io.Copy(out, reader)
	if err != nil {
		return err
	}
	logger.WithField("bytes", n).Debug("extraction finished")
	return nil
}

func extractRecursive(extractor extractous.Extractor, src string, out *os.File) error {
	var (
		result *extractous.RecursiveExtraction
		err    error
	)
	if flags.fromURL {
		result, err = extractor.ExtractURLRecursive(src)
	} else {
		result, err = extractor.ExtractFileRecursive(src)
	}
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"source":    src,
		"documents": result.TotalCount(),
	}).Debug("recursive extraction finished")

	for i, doc := range result.Documents {
		name := firstValue(doc.Metadata, "resourceName")
		if name == "" {
			name = firstValue(doc.Metadata, "X-TIKA:embedded_resource_path")
		}
		fmt.Fprintf(out, "--- document %d %s ---\n", i, name)
		fmt.Fprintln(out, doc.Content)
	}
	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	if _, err := setup(); err != nil {
		return err
	}

	mime, metadata, err := extractous.NewExtractor().Detect(args[0])
	if err != nil {
		return err
	}
	fmt.Println(mime)
	if length := firstValue(metadata, "Content-Length"); length != "" {
		logger.WithField("content_length", length).Debug("detection metadata")
	}
	return nil
}

func firstValue(md extractous.Metadata, key string) string {
	if vals := md[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}
