package catalog

import (
	"encoding/xml"
	"errors"
	"strings"

	"github.com/alexandrebha/cybook/circulation"
)

const (
	tagISBN            = "010"
	tagTitle           = "200"
	tagAuthor          = "700"
	tagPublication     = "210"
	tagEdition         = "205"
	tagCollection      = "225"
	subfieldMain       = "a"
	subfieldPublicDate = "d"
)

// Element names are matched without namespace, so srw:, mxc: and unprefixed documents all decode.
type searchRetrieveResponse struct {
	XMLName         xml.Name    `xml:"searchRetrieveResponse"`
	NumberOfRecords int         `xml:"numberOfRecords"`
	Records         []sruRecord `xml:"records>record"`
}

type sruRecord struct {
	Data struct {
		Record marcRecord `xml:"record"`
	} `xml:"recordData"`
}

type marcRecord struct {
	DataFields []dataField `xml:"datafield"`
}

type dataField struct {
	Tag       string     `xml:"tag,attr"`
	Subfields []subfield `xml:"subfield"`
}

type subfield struct {
	Code  string `xml:"code,attr"`
	Value string `xml:",chardata"`
}

// field returns the first subfield with the given code of the first datafield with the given tag
// that has one, trimmed. Empty if absent.
func (r marcRecord) field(tag, code string) string {
	for _, df := range r.DataFields {
		if df.Tag != tag {
			continue
		}

		for _, sf := range df.Subfields {
			if sf.Code == code {
				return strings.TrimSpace(sf.Value)
			}
		}
	}

	return ""
}

func (r marcRecord) toMetadata() circulation.Metadata {
	return circulation.Metadata{
		ISBN:            r.field(tagISBN, subfieldMain),
		Title:           r.field(tagTitle, subfieldMain),
		Author:          r.field(tagAuthor, subfieldMain),
		PublicationDate: r.field(tagPublication, subfieldPublicDate),
		Edition:         r.field(tagEdition, subfieldMain),
		Collection:      r.field(tagCollection, subfieldMain),
	}
}

// ParseRecords decodes an SRU searchRetrieve response into metadata, one entry per record, in document order.
func ParseRecords(body []byte) ([]circulation.Metadata, error) {
	var resp searchRetrieveResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, errors.Join(ErrInvalidXML, err)
	}

	result := make([]circulation.Metadata, 0, len(resp.Records))
	for _, rec := range resp.Records {
		result = append(result, rec.Data.Record.toMetadata())
	}

	return result, nil
}
