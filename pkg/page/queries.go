package page

// seoFragment selects the SEO entry linked from a page.
const seoFragment = `
  fragment SeoFields on Seo {
    metaTitle
    metaDescription
    openGraphTitle
    openGraphDescription
    openGraphImage {
      title
      description
      contentType
      fileName
      size
      url
      width
      height
    }
    noIndex
    noFollow
    canonicalUrl
  }
`

// richTextFragment selects a rich-text document with its linked blocks.
const richTextFragment = `
  fragment RichTextFields on RichText {
    json
    links {
      assets {
        block {
          sys { id }
          contentType
          title
          description
          url
          width
          height
        }
      }
      entries {
        block {
          sys { id __typename }
          ... on Page { title slug }
        }
        inline {
          sys { id __typename }
          ... on Page { title slug }
        }
      }
    }
  }
`

// PageBySlugQuery fetches one page with its sections, author and SEO entry.
// Variables: slug (String!), preview (Boolean!).
const PageBySlugQuery = `
  query GetPageBySlug($slug: String!, $preview: Boolean!) {
    pageCollection(limit: 1, where: { slug: $slug }, preview: $preview) {
      items {
        sys { id }
        title
        slug
        summary
        publishDate
        updatedDate
        contentType
        seo { ...SeoFields }
        sectionsCollection(limit: 10) {
          items {
            sys { id __typename }
            ... on ContentSection {
              title
              subtitle
              content { ...RichTextFields }
              media { title description contentType fileName url width height }
              ctaText
              ctaUrl
              layout
              backgroundColor
              alignment
            }
            ... on HeroSection {
              title
              subtitle
              backgroundImage { title description url width height }
              ctaText
              ctaUrl
              textColor
              overlayOpacity
            }
            ... on FeaturedContentSection {
              title
              subtitle
              layout
              itemsPerRow
              itemsCollection(limit: 12) {
                items {
                  sys { id }
                  title
                  description
                  image { title description url width height }
                  link
                }
              }
            }
          }
        }
        author {
          name
          bio { ...RichTextFields }
          photo { title description url width height }
          email
        }
      }
    }
  }
` + seoFragment + richTextFragment

// AllPageSlugsQuery lists page slugs. Variables: limit (Int).
const AllPageSlugsQuery = `
  query GetAllPageSlugs($limit: Int = 100) {
    pageCollection(limit: $limit) {
      items {
        slug
      }
    }
  }
`
