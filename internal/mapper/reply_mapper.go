package mapper

import (
	"fmt"

	"disaster-locator-bot/internal/constant"
	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/entity"
)

// ReplyMapper turns router decisions and resolution results into outbound
// message descriptors. It never sends anything; ids are left for the sender.
type ReplyMapper struct{}

func NewReplyMapper() *ReplyMapper {
	return &ReplyMapper{}
}

func (m *ReplyMapper) Text(text string) dto.OutboundMessage {
	return dto.OutboundMessage{Kind: dto.MessageKindText, Text: text}
}

func (m *ReplyMapper) Menu(options []entity.MenuOption) dto.OutboundMessage {
	rows := make([]dto.ListRow, 0, len(options))
	for _, o := range options {
		rows = append(rows, dto.ListRow{
			RowId:       o.RowId(),
			Title:       o.Title,
			Description: o.Description,
		})
	}

	return dto.OutboundMessage{
		Kind: dto.MessageKindList,
		List: &dto.ListMessage{
			Title:      constant.MenuTitle,
			Text:       constant.MenuText,
			Footer:     constant.MenuFooter,
			ButtonText: constant.MenuButtonText,
			Sections: []dto.ListSection{
				{Title: constant.MenuSection, Rows: rows},
			},
		},
	}
}

// Location builds one pin. The distance is appended to the address when known.
func (m *ReplyMapper) Location(e entity.ResolutionEntry) dto.OutboundMessage {
	address := e.Address
	if e.DistanceKm != nil {
		address = fmt.Sprintf("%s / %s: %s", address, constant.DistanceLabel, FormatDistance(*e.DistanceKm))
	}

	return dto.OutboundMessage{
		Kind: dto.MessageKindLocation,
		Location: &dto.LocationPin{
			Latitude:  e.Location.Latitude,
			Longitude: e.Location.Longitude,
			Name:      e.Name,
			Address:   address,
		},
	}
}

// Entries keeps the ranking: each pin is followed by its detail text, if any.
func (m *ReplyMapper) Entries(entries []entity.ResolutionEntry) []dto.OutboundMessage {
	out := make([]dto.OutboundMessage, 0, len(entries)*2)
	for _, e := range entries {
		out = append(out, m.Location(e))
		if e.Detail != "" {
			out = append(out, m.Text(e.Detail))
		}
	}
	return out
}

func FormatDistance(km float64) string {
	return fmt.Sprintf("%.1f km", km)
}
