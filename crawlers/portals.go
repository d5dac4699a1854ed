package crawlers

// Portal adapters register themselves in the crawler registry on import.
import (
	_ "github.com/LexiconIndonesia/news-portal-crawler/crawlers/antaranews"
	_ "github.com/LexiconIndonesia/news-portal-crawler/crawlers/cnnindonesia"
	_ "github.com/LexiconIndonesia/news-portal-crawler/crawlers/detik"
	_ "github.com/LexiconIndonesia/news-portal-crawler/crawlers/kompas"
	_ "github.com/LexiconIndonesia/news-portal-crawler/crawlers/liputan6"
	_ "github.com/LexiconIndonesia/news-portal-crawler/crawlers/tribunnews"
)
