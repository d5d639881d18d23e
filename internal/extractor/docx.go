package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ExtractDOCX reads word/document.xml and returns the text of its runs, one
// line per paragraph. Table cells and nested paragraphs are included.
func ExtractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty DOCX data")
	}

	reader := bytes.NewReader(data)

	zipReader, err := zip.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX as ZIP: %w", err)
	}

	var documentFile *zip.File
	for _, file := range zipReader.File {
		if strings.ReplaceAll(file.Name, "\\", "/") == "word/document.xml" {
			documentFile = file
			break
		}
	}

	if documentFile == nil {
		return "", fmt.Errorf("document.xml not found in DOCX")
	}

	xmlFile, err := documentFile.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer xmlFile.Close()

	text, err := docxText(xmlFile)
	if err != nil {
		return "", fmt.Errorf("failed to parse document.xml: %w", err)
	}

	return normalizeText(text), nil
}

func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var textBuilder strings.Builder
	inText := false
	// tab and break elements outside runs are tab-stop or layout definitions
	runDepth := 0

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				runDepth++
			case "t":
				inText = true
			case "tab":
				if runDepth > 0 {
					textBuilder.WriteString("\t")
				}
			case "br", "cr":
				if runDepth > 0 {
					textBuilder.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				if runDepth > 0 {
					runDepth--
				}
			case "t":
				inText = false
			case "p":
				textBuilder.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				textBuilder.Write(t)
			}
		}
	}

	return textBuilder.String(), nil
}
