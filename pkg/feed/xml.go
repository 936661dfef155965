package feed

import (
	"encoding/xml"

	"github.com/pkg/errors"

	"github.com/gdrivecast/gdrivecast/pkg/model"
)

const itunesNS = "http://www.itunes.com/dtds/podcast-1.0.dtd"
const atomNS = "http://www.w3.org/2005/Atom"

// Serialization and parsing use two struct sets: encoding/xml emits
// prefixed names like itunes:author verbatim on marshal, but resolves them to
// the namespace URL on unmarshal, so the same tags cannot serve both
// directions. Round-trip fidelity is guaranteed only for the fields this
// system writes.

type rssOut struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	ITunesNS string     `xml:"xmlns:itunes,attr"`
	AtomNS   string     `xml:"xmlns:atom,attr"`
	Channel  channelOut `xml:"channel"`
}

type channelOut struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Language    string    `xml:"language"`
	Author      string    `xml:"itunes:author"`
	Summary     string    `xml:"itunes:summary"`
	Description string    `xml:"description"`
	Explicit    string    `xml:"itunes:explicit"`
	Category    attrText  `xml:"itunes:category"`
	Image       attrHref  `xml:"itunes:image"`
	Items       []itemOut `xml:"item"`
}

type itemOut struct {
	Title       string       `xml:"title"`
	Description string       `xml:"description"`
	Explicit    string       `xml:"itunes:explicit"`
	Enclosure   enclosureOut `xml:"enclosure"`
	GUID        string       `xml:"guid"`
	PubDate     string       `xml:"pubDate"`
}

type enclosureOut struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

type attrText struct {
	Text string `xml:"text,attr"`
}

type attrHref struct {
	Href string `xml:"href,attr"`
}

type rssIn struct {
	XMLName xml.Name   `xml:"rss"`
	Channel *channelIn `xml:"channel"`
}

type channelIn struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Language    string   `xml:"language"`
	Author      string   `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd author"`
	Summary     string   `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd summary"`
	Description string   `xml:"description"`
	Explicit    string   `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd explicit"`
	Category    attrText `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd category"`
	Image       attrHref `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd image"`
	Items       []itemIn `xml:"item"`
}

type itemIn struct {
	Title       string       `xml:"title"`
	Description string       `xml:"description"`
	Explicit    string       `xml:"http://www.itunes.com/dtds/podcast-1.0.dtd explicit"`
	Enclosure   enclosureOut `xml:"enclosure"`
	GUID        string       `xml:"guid"`
	PubDate     string       `xml:"pubDate"`
}

// Parse loads a feed document from its serialized form. A document without a
// channel element fails with model.ErrMalformedFeed.
func Parse(data []byte) (*Document, error) {
	var rss rssIn
	if err := xml.Unmarshal(data, &rss); err != nil {
		return nil, errors.Wrapf(model.ErrMalformedFeed, "failed to parse feed: %v", err)
	}

	if rss.Channel == nil {
		return nil, errors.Wrap(model.ErrMalformedFeed, "feed has no channel element")
	}

	ch := rss.Channel
	doc := &Document{
		Title:       ch.Title,
		Link:        ch.Link,
		Language:    ch.Language,
		Author:      ch.Author,
		Summary:     ch.Summary,
		Description: ch.Description,
		Explicit:    ch.Explicit,
		Category:    ch.Category.Text,
		Image:       ch.Image.Href,
	}

	for _, item := range ch.Items {
		doc.Items = append(doc.Items, Item{
			Title:       item.Title,
			Description: item.Description,
			Explicit:    item.Explicit,
			Enclosure: Enclosure{
				URL:    item.Enclosure.URL,
				Length: item.Enclosure.Length,
				Type:   item.Enclosure.Type,
			},
			GUID:    item.GUID,
			PubDate: item.PubDate,
		})
	}

	return doc, nil
}

// Bytes serializes the document: XML declaration, UTF-8, tab indentation,
// fixed channel field order.
func (d *Document) Bytes() ([]byte, error) {
	rss := rssOut{
		Version:  "2.0",
		ITunesNS: itunesNS,
		AtomNS:   atomNS,
		Channel: channelOut{
			Title:       d.Title,
			Link:        d.Link,
			Language:    d.Language,
			Author:      d.Author,
			Summary:     d.Summary,
			Description: d.Description,
			Explicit:    d.Explicit,
			Category:    attrText{Text: d.Category},
			Image:       attrHref{Href: d.Image},
		},
	}

	for _, item := range d.Items {
		rss.Channel.Items = append(rss.Channel.Items, itemOut{
			Title:       item.Title,
			Description: item.Description,
			Explicit:    item.Explicit,
			Enclosure: enclosureOut{
				URL:    item.Enclosure.URL,
				Length: item.Enclosure.Length,
				Type:   item.Enclosure.Type,
			},
			GUID:    item.GUID,
			PubDate: item.PubDate,
		})
	}

	body, err := xml.MarshalIndent(&rss, "", "\t")
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize feed")
	}

	return append([]byte(xml.Header), append(body, '\n')...), nil
}
