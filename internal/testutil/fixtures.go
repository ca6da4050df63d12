package testutil

// AboutPageData is the GraphQL "data" object for a page with slug "about",
// title "About Us" and a single ContentSection without alignment.
const AboutPageData = `{
  "pageCollection": {
    "items": [{
      "sys": {"id": "about-page"},
      "title": "About Us",
      "slug": "about",
      "summary": "Learn more about our team.",
      "contentType": "page",
      "publishDate": "2024-01-15T00:00:00.000Z",
      "updatedDate": null,
      "seo": null,
      "sectionsCollection": {
        "items": [{
          "sys": {"id": "about-intro", "__typename": "ContentSection"},
          "title": "Our story",
          "subtitle": null,
          "content": {"json": {"nodeType": "document", "data": {}, "content": []}, "links": {"assets": {"block": []}, "entries": {"block": [], "inline": []}}},
          "media": null,
          "ctaText": null,
          "ctaUrl": null,
          "layout": null,
          "backgroundColor": null
        }]
      },
      "author": null
    }]
  }
}`

// PageSlugsData is the GraphQL "data" object of an AllPageSlugs query.
const PageSlugsData = `{"pageCollection":{"items":[{"slug":"home"},{"slug":"about"},{"slug":"contact"}]}}`

// BlogPostsBody is a REST entries response with two posts sharing one
// category and author.
const BlogPostsBody = `{
  "sys": {"type": "Array"},
  "total": 2, "skip": 0, "limit": 10,
  "items": [
    {
      "sys": {"id": "post-1", "type": "Entry", "contentType": {"sys": {"type": "Link", "linkType": "ContentType", "id": "blogPost"}},
              "createdAt": "2024-03-02T10:00:00Z", "updatedAt": "2024-03-02T12:00:00Z"},
      "fields": {
        "title": "Second Post", "slug": "second-post", "excerpt": "More news",
        "content": {"nodeType": "document", "data": {}, "content": []},
        "author": {"sys": {"type": "Link", "linkType": "Entry", "id": "author-1"}},
        "category": {"sys": {"type": "Link", "linkType": "Entry", "id": "cat-news"}}
      }
    },
    {
      "sys": {"id": "post-2", "type": "Entry", "contentType": {"sys": {"type": "Link", "linkType": "ContentType", "id": "blogPost"}},
              "createdAt": "2024-03-01T10:00:00Z", "updatedAt": "2024-03-01T12:00:00Z"},
      "fields": {
        "title": "First Post", "slug": "first-post", "excerpt": "Hello",
        "featuredImage": {"sys": {"type": "Link", "linkType": "Asset", "id": "img-1"}},
        "category": {"sys": {"type": "Link", "linkType": "Entry", "id": "cat-news"}}
      }
    }
  ],
  "includes": {
    "Entry": [
      {"sys": {"id": "author-1", "type": "Entry"}, "fields": {"name": "Ada Lovelace"}},
      {"sys": {"id": "cat-news", "type": "Entry"}, "fields": {"name": "News", "slug": "news"}}
    ],
    "Asset": [
      {"sys": {"id": "img-1", "type": "Asset"}, "fields": {"title": "Cover",
        "file": {"url": "//images.ctfassets.net/cover.jpg", "details": {"image": {"width": 1200, "height": 630}}}}}
    ]
  }
}`

// CategoriesBody is a REST entries response with two categories.
const CategoriesBody = `{
  "sys": {"type": "Array"},
  "total": 2, "skip": 0, "limit": 100,
  "items": [
    {"sys": {"id": "cat-news", "type": "Entry"}, "fields": {"name": "News", "slug": "news"}},
    {"sys": {"id": "cat-guides", "type": "Entry"}, "fields": {"slug": "how-to-guides"}}
  ]
}`

// EmptyEntriesBody is a REST entries response with no items.
const EmptyEntriesBody = `{"sys":{"type":"Array"},"total":0,"skip":0,"limit":10,"items":[]}`
