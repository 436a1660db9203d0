package constant

import "disaster-locator-bot/internal/entity"

const (
	GreetingText = "🚨 Yanındayım Destek Botu 🚨"

	MenuTitle      = "🚨 Yanındayım Afet Destek 🚨"
	MenuText       = "İhtiyacınız olan hizmeti seçeneklerden seçerek kullabilirsiniz"
	MenuFooter     = "*Önemli Not*: Kişisel verileriniz hiç bir kurum ile paylaşılmamaktadır. \r\n\r\nVeriler 30 dakikada bir olmak üzere güncellenmektedir."
	MenuButtonText = "Acil Durum Seçenekleri"
	MenuSection    = "Acil Durum Seçenekleri"

	LocationPromptText = "📍 Size en yakın bölgeleri sunabilmemiz adına lütfen konumunuzu gönderiniz."
	RestartPromptText  = "Lütfen botu *Başlat* mesajı ile başlatınız"
	GenericErrorText   = "Bir hata ile karşılaşıldı. Çok üzgünüz :("
	NoResultsText      = "Konumunuza yakın bir nokta bulunamadı. Çok üzgünüz :("

	ClosingText = "Hayatını kaybeden vatandaşlarımıza Allah'tan rahmet, yaralılara acil şifalar, yakınlarına sabır ve başsağlığı diliyoruz.\r\n\r\n*Devam etmek için sohbete herhangi bir şey yazabilirsiniz.*  \r\n\r\n *Yanındayım Ekibi*"

	DistanceLabel = "Uzaklık"
	Placeholder   = "-"
)

// Result sizes per strategy.
const (
	AssemblyPointLimit  = 5
	ShelterNetworkLimit = 5
	BloodDonationLimit  = 3
	PharmacyLimit       = 3
)

// MenuOptions is the static catalog; ids map 1:1 onto armed strategies.
var MenuOptions = []entity.MenuOption{
	{
		Id:          1,
		Title:       " 🆘 En Yakın Toplanma ve Acil Durum Yerleri (Türkiye Geneli)",
		Description: "E-Devlet entegrasyonu ile lokasyonunuza en yakın toplanma noktaları size konum olarak gelecektir.",
		Strategy:    entity.StrategyAssemblyPoints,
	},
	{
		Id:          2,
		Title:       "🚨 Ahbap Derneği, Afet Konaklama ve Güvenli Bölgeleri (Sadece Afet Bölgeleri)",
		Description: "Ahbap derneği entegrasyonu ile lokasyonunuza en yakın acil durum noktaları size konum olarak gelecektir.",
		Strategy:    entity.StrategyShelterNetwork,
	},
	{
		Id:          3,
		Title:       "🩸 Kızılay Kan Bağış Noktaları (Türkiye Geneli)",
		Description: "Kızılay entegrasyonu ile lokasyonunuza en yakın kan bağışı noktaları size konum olarak gelecektir.",
		Strategy:    entity.StrategyBloodDonation,
	},
	{
		Id:          4,
		Title:       "💊 Sahra Konteyner Eczaneler (Sadece Afet Bölgeleri)",
		Description: "Lokasyonunuza en yakın sahra konteyner eczane noktaları size konum olarak gelecektir.",
		Strategy:    entity.StrategyPharmacies,
	},
}

// MenuOptionById looks up the catalog; ok is false for ids outside 1..4.
func MenuOptionById(id int) (entity.MenuOption, bool) {
	for _, o := range MenuOptions {
		if o.Id == id {
			return o, true
		}
	}
	return entity.MenuOption{}, false
}

// Shelter network category tags (map style ids of the source dataset).
const (
	ShelterLabelSafePoint = "Güvenli Nokta"
	ShelterLabelFeeding   = "Konaklama - Beslenme"
)

var ShelterCategoryLabels = map[string]string{
	"#icon-1826-0288D1-nodesc-normal": ShelterLabelSafePoint,
	"#icon-1602-FF5252-nodesc-normal": ShelterLabelFeeding,
	"#icon-1577-7CB342-normal":        ShelterLabelFeeding,
}

// Watermill topic and NATS subjects.
const (
	InboundTopic         = "inbound_messages"
	InboundEventType     = "inbound_message"
	OutboundEventType    = "outbound_message"
	InboundDurableName   = "router-intake"
	ClusterEventsChannel = "cluster_events"
	UserLockKeyPrefix    = "conversation-lock:"
)
