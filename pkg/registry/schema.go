package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema 는 파서 서비스 응답의 계약이다.
// 외부 서비스라 필드가 슬그머니 바뀔 수 있어 소비 전에 반드시 검증한다.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["address", "owners", "mortgages", "seizures"],
  "properties": {
    "address": {"type": "string", "minLength": 1},
    "buildingName": {"type": "string"},
    "issuedAt": {"type": "string"},
    "owners": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "share": {"type": "string"}
        }
      }
    },
    "mortgages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["mortgagee", "maxClaim"],
        "properties": {
          "mortgagee": {"type": "string"},
          "maxClaim": {"type": "integer", "minimum": 0},
          "setDate": {"type": "string"},
          "cancelled": {"type": "boolean"}
        }
      }
    },
    "seizures": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["kind"],
        "properties": {
          "kind": {"type": "string", "enum": ["압류", "가압류"]},
          "creditor": {"type": "string"},
          "entryDate": {"type": "string"},
          "cancelled": {"type": "boolean"}
        }
      }
    }
  }
}`

// ValidateDocumentJSON 은 파싱된 등기부 JSON 이 스키마를 만족하는지 검사한다.
func ValidateDocumentJSON(data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	docLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("등기부 스키마 검증 실행 실패: %w", err)
	}
	if !result.Valid() {
		// 첫 번째 위반만 메시지에 싣는다
		first := result.Errors()[0]
		return fmt.Errorf("등기부 JSON 스키마 위반: %s", first.String())
	}
	return nil
}

// ValidateDocument 는 파싱된 등기부 문서가 스키마를 만족하는지 검사한다.
func ValidateDocument(doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("등기부 문서 직렬화 실패: %w", err)
	}
	return ValidateDocumentJSON(data)
}

// bytesReader 는 multipart 업로드용 io.Reader 를 만든다.
func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
